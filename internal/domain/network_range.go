package domain

import "net/netip"

// NetworkRange is a contiguous IPv4 block as inclusive [StartIP, EndIP]
// bounds. Ranges derived from one optimized network set are non-overlapping
// and non-adjacent.
type NetworkRange struct {
	StartIP uint32
	EndIP   uint32
}

// Contains reports whether ip falls inside the range.
func (r NetworkRange) Contains(ip uint32) bool {
	return ip >= r.StartIP && ip <= r.EndIP
}

// AddrCount returns the number of addresses the range covers.
func (r NetworkRange) AddrCount() uint64 {
	return uint64(r.EndIP) - uint64(r.StartIP) + 1
}

// RangeFromPrefix converts an IPv4 prefix into its inclusive address bounds.
// The second return value is false for non-IPv4 prefixes.
func RangeFromPrefix(pfx netip.Prefix) (NetworkRange, bool) {
	addr := pfx.Addr().Unmap()
	if !addr.Is4() {
		return NetworkRange{}, false
	}

	start := AddrToUint32(addr)
	hostBits := uint32(32 - pfx.Bits())
	var span uint32
	if hostBits >= 32 {
		span = ^uint32(0)
	} else {
		span = (uint32(1) << hostBits) - 1
	}

	return NetworkRange{StartIP: start, EndIP: start + span}, true
}

// AddrToUint32 packs an IPv4 address into its big-endian integer form.
func AddrToUint32(addr netip.Addr) uint32 {
	b := addr.Unmap().As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
