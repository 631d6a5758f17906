package ip4

import (
	"errors"
	"sort"
	"testing"
)

func TestSerializeLength(t *testing.T) {
	buf, err := Serialize([]string{"10.0.0.1", "10.0.0.2", "10.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf)%5 != 0 {
		t.Fatalf("len(buf)=%d, not a multiple of 5", len(buf))
	}
	// Duplicate 10.0.0.1 must be collapsed.
	if len(buf) != 10 {
		t.Fatalf("len(buf)=%d, want 10", len(buf))
	}
}

func TestSerializeSortedAndDeduped(t *testing.T) {
	buf, err := Serialize([]string{"10.0.0.5", "10.0.0.1", "10.0.0.3", "10.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var records []Record
	for p := 0; p+5 <= len(buf); p += 5 {
		records = append(records, Record(buf[p:p+5:p+5]))
	}
	if !sort.SliceIsSorted(records, func(i, j int) bool { return records[i].Less(records[j]) }) {
		t.Fatalf("records not sorted: %v", records)
	}
	for i := 1; i < len(records); i++ {
		if records[i] == records[i-1] {
			t.Fatalf("adjacent duplicate records at %d: %v", i, records[i])
		}
	}
}

func TestSerializeExpandsRange(t *testing.T) {
	buf, err := Serialize([]string{"10.0.0.1,10.0.0.3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf) != 15 {
		t.Fatalf("len(buf)=%d, want 15 (3 expanded /32 records)", len(buf))
	}
	for i, want := range []uint32{0x0a000001, 0x0a000002, 0x0a000003} {
		ip, mask := Record(buf[i*5 : i*5+5 : i*5+5]).Decode()
		if ip != want || mask != 32 {
			t.Errorf("record %d = (%#x,%d), want (%#x,32)", i, ip, mask, want)
		}
	}
}

func TestSerializeInvalidEntry(t *testing.T) {
	_, err := Serialize([]string{"10.0.0.1", "garbage"})
	if !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("err = %v, want ErrInvalidEntry", err)
	}
}

func TestRangeSize(t *testing.T) {
	if got := RangeSize(10, 10); got != 1 {
		t.Errorf("RangeSize(10,10) = %d, want 1", got)
	}
	if got := RangeSize(0, 0xffffffff); got != 1<<32 {
		t.Errorf("RangeSize(whole space) = %d, want 2^32", got)
	}
}
