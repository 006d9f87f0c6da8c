package index

import (
	"net/netip"
	"testing"
)

func mustPrefixes(t *testing.T, strs ...string) []netip.Prefix {
	t.Helper()
	prefixes := make([]netip.Prefix, 0, len(strs))
	for _, s := range strs {
		prefixes = append(prefixes, netip.MustParsePrefix(s))
	}
	return prefixes
}

func TestContains(t *testing.T) {
	idx := Build(mustPrefixes(t, "10.0.0.0/24", "192.0.2.0/25"))

	cases := []struct {
		addr string
		want bool
	}{
		{"10.0.0.0", true},    // network address
		{"10.0.0.128", true},  // inside
		{"10.0.0.255", true},  // broadcast address
		{"10.0.1.0", false},   // one past the end
		{"9.255.255.255", false},
		{"192.0.2.0", true},
		{"192.0.2.127", true},
		{"192.0.2.128", false}, // outside the /25
		{"203.0.113.1", false},
	}

	for _, tc := range cases {
		if got := idx.Contains(netip.MustParseAddr(tc.addr)); got != tc.want {
			t.Errorf("Contains(%s) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}

func TestBuildToleratesOverlap(t *testing.T) {
	// Defensive construction: un-merged input must not break lookups.
	idx := Build(mustPrefixes(t, "10.0.0.0/24", "10.0.0.0/25", "10.0.0.128/25", "10.0.0.0/24"))

	for _, addr := range []string{"10.0.0.1", "10.0.0.127", "10.0.0.200"} {
		if !idx.Contains(netip.MustParseAddr(addr)) {
			t.Errorf("Contains(%s) = false, want true", addr)
		}
	}
	if idx.Contains(netip.MustParseAddr("10.0.1.1")) {
		t.Error("Contains(10.0.1.1) = true, want false")
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := Build(nil)
	if idx.Contains(netip.MustParseAddr("10.0.0.1")) {
		t.Error("empty index claimed to contain an address")
	}
	if idx.Size() != 0 {
		t.Errorf("Size = %d, want 0", idx.Size())
	}
}

func TestIPv6NeverMatches(t *testing.T) {
	idx := Build(mustPrefixes(t, "10.0.0.0/8"))
	if idx.Contains(netip.MustParseAddr("2001:db8::1")) {
		t.Error("IPv4-only index matched an IPv6 address")
	}
}

func TestMappedAddressesUnmap(t *testing.T) {
	idx := Build(mustPrefixes(t, "10.0.0.0/24"))
	if !idx.Contains(netip.MustParseAddr("::ffff:10.0.0.5")) {
		t.Error("IPv4-mapped address should hit after unmapping")
	}
}
