// Package index provides the per-country membership index: a read-only
// structure answering whether an IPv4 address falls inside any network of one
// country's optimized set.
package index

import (
	"net/netip"

	"github.com/gaissmai/bart"
)

// Index is an immutable prefix-membership table. It is built once per
// execution context and never mutated afterwards, so replicas may be used
// concurrently without synchronization.
type Index struct {
	table bart.Table[struct{}]
	size  int
}

// Build constructs an index from an optimized network set. Duplicate or
// overlapping prefixes are tolerated; inserts are idempotent per prefix.
func Build(prefixes []netip.Prefix) *Index {
	idx := &Index{}
	for _, pfx := range prefixes {
		if !pfx.IsValid() {
			continue
		}
		idx.table.Insert(pfx.Masked(), struct{}{})
		idx.size++
	}
	return idx
}

// Contains reports whether addr is covered by any indexed network.
func (idx *Index) Contains(addr netip.Addr) bool {
	return idx.table.Contains(addr.Unmap())
}

// Size returns the number of inserted prefixes.
func (idx *Index) Size() int {
	return idx.size
}
