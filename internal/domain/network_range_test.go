package domain

import (
	"net/netip"
	"testing"
)

func TestRangeFromPrefix(t *testing.T) {
	cases := []struct {
		prefix     string
		start, end uint32
	}{
		{"10.0.0.0/24", 0x0A000000, 0x0A0000FF},
		{"0.0.0.0/0", 0, 0xFFFFFFFF},
		{"192.0.2.1/32", 0xC0000201, 0xC0000201},
		{"128.0.0.0/1", 0x80000000, 0xFFFFFFFF},
	}

	for _, tc := range cases {
		r, ok := RangeFromPrefix(netip.MustParsePrefix(tc.prefix))
		if !ok {
			t.Fatalf("RangeFromPrefix(%s) not ok", tc.prefix)
		}
		if r.StartIP != tc.start || r.EndIP != tc.end {
			t.Errorf("RangeFromPrefix(%s) = [%#x,%#x], want [%#x,%#x]",
				tc.prefix, r.StartIP, r.EndIP, tc.start, tc.end)
		}
	}
}

func TestRangeFromPrefixRejectsIPv6(t *testing.T) {
	if _, ok := RangeFromPrefix(netip.MustParsePrefix("2001:db8::/32")); ok {
		t.Fatal("IPv6 prefix should not convert")
	}
}

func TestRangeContains(t *testing.T) {
	r, _ := RangeFromPrefix(netip.MustParsePrefix("10.0.0.0/24"))

	if !r.Contains(AddrToUint32(netip.MustParseAddr("10.0.0.0"))) {
		t.Error("network address should be contained")
	}
	if !r.Contains(AddrToUint32(netip.MustParseAddr("10.0.0.255"))) {
		t.Error("broadcast address should be contained")
	}
	if r.Contains(AddrToUint32(netip.MustParseAddr("10.0.1.0"))) {
		t.Error("address past the end should not be contained")
	}
}

func TestAddrCount(t *testing.T) {
	r, _ := RangeFromPrefix(netip.MustParsePrefix("10.0.0.0/24"))
	if got := r.AddrCount(); got != 256 {
		t.Errorf("AddrCount = %d, want 256", got)
	}

	full, _ := RangeFromPrefix(netip.MustParsePrefix("0.0.0.0/0"))
	if got := full.AddrCount(); got != 1<<32 {
		t.Errorf("AddrCount(/0) = %d, want 2^32", got)
	}
}
