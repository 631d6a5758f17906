package ip4

import (
	"fmt"
	"sort"
)

// Serialize parses entries in order, expands any range entry into one /32
// Record per address in the closed interval, sorts the resulting records
// by the canonical 5-byte lexicographic order, and deduplicates adjacent
// equal records. The returned buffer's length is always a multiple of 5.
//
// Serialize fails with ErrInvalidEntry on the first entry (in input order)
// that does not parse; no normalized output is produced in that case.
// Complexity is O(M log M) in the total expanded record count M, and a
// single range entry can expand to as many records as its span — callers
// passing wide ranges should budget memory accordingly.
func Serialize(entries []string) ([]byte, error) {
	records := make([]Record, 0, len(entries))
	for i, s := range entries {
		ent := ParseEntry(s)
		switch ent.Kind {
		case Single:
			records = append(records, EncodeRecord(Masked(ent.IP, ent.Mask), ent.Mask))
		case Range:
			for v := ent.First; ; v++ {
				records = append(records, EncodeRecord(v, 32))
				if v == ent.Last {
					break
				}
			}
		default:
			return nil, fmt.Errorf("entry %d (%q): %w", i+1, s, ErrInvalidEntry)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Less(records[j]) })

	out := make([]byte, 0, len(records)*5)
	var prev Record
	var havePrev bool
	for _, r := range records {
		if havePrev && r == prev {
			continue
		}
		out = append(out, r[:]...)
		prev = r
		havePrev = true
	}
	return out, nil
}

// RangeSize returns the number of /32 records a range entry of the given
// span would expand to: last-first+1. It is exposed so callers (such as a
// CLI front end) can guard against resource-consuming expansions before
// calling Serialize; Serialize itself never refuses a large range.
func RangeSize(first, last uint32) uint64 {
	return uint64(last) - uint64(first) + 1
}
