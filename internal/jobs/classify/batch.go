// Package classify holds the classification pipeline: the per-batch
// classifier, the parallel dispatcher with its sequential fallback, and the
// per-country orchestration.
package classify

import (
	"net/netip"
	"strings"

	"github.com/charmbracelet/log"
)

// Matcher answers membership lookups. Satisfied by *index.Index.
type Matcher interface {
	Contains(addr netip.Addr) bool
}

// ClassifyBatch runs one batch of raw entries against the index. Entries are
// trimmed; blanks are skipped. A CIDR entry is looked up by its network
// address, a plain entry by itself. Malformed entries are dropped and
// counted, never fatal. Matches keep their original trimmed form, in input
// order. The function performs no I/O and keeps no state across calls.
func ClassifyBatch(idx Matcher, batch []string) (matched []string, malformed int) {
	for _, raw := range batch {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}

		key, ok := lookupKey(entry)
		if !ok {
			malformed++
			log.Debug("Skipping malformed entry", "entry", entry)
			continue
		}

		if idx.Contains(key) {
			matched = append(matched, entry)
		}
	}
	return matched, malformed
}

// lookupKey derives the address to check: for CIDR notation the masked
// network address (the prefix length is only used for parsing), otherwise the
// address itself.
func lookupKey(entry string) (netip.Addr, bool) {
	if strings.Contains(entry, "/") {
		pfx, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Addr{}, false
		}
		return pfx.Masked().Addr().Unmap(), true
	}

	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
