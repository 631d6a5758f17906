package ip4

import "testing"

func TestParseEntrySingle(t *testing.T) {
	cases := []struct {
		in   string
		ip   uint32
		mask uint8
	}{
		{"10.0.0.1", 0x0a000001, 32},
		{"0.0.0.0", 0, 32},
		{"255.255.255.255", 0xffffffff, 32},
		{"10.0.0.0/8", 0x0a000000, 8},
		{"192.168.1.0/24", 0xc0a80100, 24},
	}
	for _, c := range cases {
		got := ParseEntry(c.in)
		if got.Kind != Single || got.IP != c.ip || got.Mask != c.mask {
			t.Errorf("ParseEntry(%q) = %+v, want Single{IP:%#x Mask:%d}", c.in, got, c.ip, c.mask)
		}
	}
}

func TestParseEntryRange(t *testing.T) {
	got := ParseEntry("10.0.0.1,10.0.0.5")
	if got.Kind != Range || got.First != 0x0a000001 || got.Last != 0x0a000005 {
		t.Errorf("ParseEntry(range) = %+v", got)
	}

	// A degenerate range (first == last) is accepted.
	got = ParseEntry("10.0.0.1,10.0.0.1")
	if got.Kind != Range || got.First != got.Last {
		t.Errorf("ParseEntry(degenerate range) = %+v", got)
	}
}

func TestParseEntryInvalid(t *testing.T) {
	cases := []string{
		"",
		"10.0.0",
		"10.0.0.256",
		"10.0.0.1/",
		"10.0.0.1/0",
		"10.0.0.1/7",
		"10.0.0.1/33",
		"10.0.0.1/abc",
		"10.0.0.1,",
		"10.0.0.5,10.0.0.1", // last < first
		"10.0.0.1 ",
		" 10.0.0.1",
		"10.0.0.1.2",
		"10.0.0.1/24/8",
		"not.an.ip.addr",
	}
	for _, in := range cases {
		if got := ParseEntry(in); got.Kind != Invalid {
			t.Errorf("ParseEntry(%q) = %+v, want Invalid", in, got)
		}
	}
}

func TestMasked(t *testing.T) {
	cases := []struct {
		ip   uint32
		mask uint8
		want uint32
	}{
		{0xc0a801ff, 24, 0xc0a80100},
		{0xc0a801ff, 32, 0xc0a801ff},
		{0xc0a801ff, 0, 0},
		{0x0a000001, 8, 0x0a000000},
	}
	for _, c := range cases {
		if got := Masked(c.ip, c.mask); got != c.want {
			t.Errorf("Masked(%#x, %d) = %#x, want %#x", c.ip, c.mask, got, c.want)
		}
	}
}
