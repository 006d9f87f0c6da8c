// Package networks collapses raw per-country CIDR tables into the minimal
// covering set used to build membership indexes.
package networks

import (
	"net"
	"net/netip"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/thcyron/cidrmerge"

	"geosift/internal/domain"
)

// Collapse parses the given CIDR strings, drops invalid or non-IPv4 entries,
// and merges overlapping and adjacent networks into the minimal equivalent
// set, ordered ascending by network address. Invalid entries are counted,
// never fatal; zero valid inputs yields an empty (non-error) result.
func Collapse(networkStrs []string) []netip.Prefix {
	var nets []*net.IPNet
	invalid := 0

	for _, raw := range networkStrs {
		ipnet, ok := parseStrictIPv4CIDR(strings.TrimSpace(raw))
		if !ok {
			invalid++
			log.Debug("Skipping invalid network", "network", raw)
			continue
		}
		nets = append(nets, ipnet)
	}

	if invalid > 0 {
		log.Warn("Skipped invalid network entries", "count", invalid)
	}

	if len(nets) == 0 {
		return nil
	}

	merged := cidrmerge.Merge(nets)

	prefixes := make([]netip.Prefix, 0, len(merged))
	for _, ipnet := range merged {
		if pfx, ok := prefixFromIPNet(ipnet); ok {
			prefixes = append(prefixes, pfx)
		}
	}

	sort.Slice(prefixes, func(i, j int) bool {
		if prefixes[i].Addr() == prefixes[j].Addr() {
			return prefixes[i].Bits() < prefixes[j].Bits()
		}
		return prefixes[i].Addr().Less(prefixes[j].Addr())
	})

	reduction := float64(len(nets)-len(prefixes)) / float64(len(nets)) * 100
	log.Info("Network optimization",
		"before", len(nets), "after", len(prefixes), "reduction_pct", reduction)

	return prefixes
}

// parseStrictIPv4CIDR accepts only well-formed IPv4 networks whose address is
// the network address itself (host bits set means a malformed reference row).
func parseStrictIPv4CIDR(s string) (*net.IPNet, bool) {
	ip, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, false
	}
	if ip.To4() == nil || ipnet.IP.To4() == nil {
		return nil, false
	}
	if !ip.Equal(ipnet.IP) {
		return nil, false
	}
	return ipnet, true
}

func prefixFromIPNet(ipnet *net.IPNet) (netip.Prefix, bool) {
	v4 := ipnet.IP.To4()
	if v4 == nil {
		return netip.Prefix{}, false
	}
	addr, ok := netip.AddrFromSlice(v4)
	if !ok {
		return netip.Prefix{}, false
	}
	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		return netip.Prefix{}, false
	}
	return netip.PrefixFrom(addr, ones), true
}

// Ranges converts optimized prefixes into inclusive address ranges, used for
// coverage accounting and invariant checks.
func Ranges(prefixes []netip.Prefix) []domain.NetworkRange {
	ranges := make([]domain.NetworkRange, 0, len(prefixes))
	for _, pfx := range prefixes {
		if r, ok := domain.RangeFromPrefix(pfx); ok {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

// TotalAddresses sums the address span of an optimized (disjoint) set.
func TotalAddresses(prefixes []netip.Prefix) uint64 {
	var total uint64
	for _, r := range Ranges(prefixes) {
		total += r.AddrCount()
	}
	return total
}
