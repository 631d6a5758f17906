package ip4

import (
	"bytes"
	"fmt"
)

// minCoalesceExponent is the smallest run size the coalescer will fold: 2^3
// = 8 addresses (a /29). Aligned pairs or quads of /32s (n=1,2) are never
// coalesced; this is preserved verbatim from the source this system was
// ported from.
const minCoalesceExponent = 3

// maxCoalesceExponent bounds the search; n=31 would coalesce half of the
// address space into a single /1.
const maxCoalesceExponent = 31

// NormalizeText parses, expands, sorts, deduplicates, and coalesces
// entries into canonical text form: strictly ascending by canonical
// record order, broader networks before narrower ones at the same base.
// It is idempotent: NormalizeText(NormalizeText(e)) == NormalizeText(e).
//
// NormalizeText fails with ErrInvalidEntry under the same conditions as
// Serialize.
func NormalizeText(entries []string) ([]string, error) {
	buf, err := Serialize(entries)
	if err != nil {
		return nil, err
	}
	return FormatRecords(buf), nil
}

// FormatRecords walks a sorted, deduplicated record buffer (as produced by
// Serialize) and formats it into canonical text, coalescing aligned runs
// of 2^n contiguous /32 records (n >= 3) into their tightest enclosing
// CIDR. Only byte-identical adjacent output records are suppressed;
// address containment between distinct records is not (see the
// containment Open Question in DESIGN.md).
func FormatRecords(buf []byte) []string {
	var out []string
	var lastEmitted []byte

	for p := 0; p+5 <= len(buf); {
		ip, mask := Record(buf[p : p+5 : p+5]).Decode()
		if mask != 32 {
			p += emitIfNew(buf[p:p+5], &lastEmitted, &out)
			continue
		}

		n := coalesceExponent(buf, p, ip)
		if n == 0 {
			p += emitIfNew(buf[p:p+5], &lastEmitted, &out)
			continue
		}

		synth := EncodeRecord(ip, 32-uint8(n))
		emitIfNew(synth[:], &lastEmitted, &out)
		p += 5 * (1 << uint(n))
	}
	return out
}

// emitIfNew appends the formatted text for rec to out unless rec is
// byte-identical to the last emitted record, and always advances
// lastEmitted to rec. It returns 5, the single-record stride, so callers
// can fold the "advance by one record" bookkeeping into the same call.
func emitIfNew(rec []byte, lastEmitted *[]byte, out *[]string) int {
	if !bytes.Equal(rec, *lastEmitted) {
		ip, mask := Record(rec).Decode()
		*out = append(*out, formatEntry(ip, mask))
		*lastEmitted = append((*lastEmitted)[:0], rec...)
	}
	return 5
}

// coalesceExponent finds the largest n in [minCoalesceExponent,
// maxCoalesceExponent] such that ip is 2^n-aligned and buf contains, at
// offset p+5*(2^n-1), a mask=32 record whose ip is ip+2^n-1 — i.e. the
// entire closed run of 2^n contiguous /32s exists in buf as a block.
// Because buf is sorted and deduplicated, checking the two endpoints and
// that every record between them is also a /32 is sufficient: the run's
// interior can then only hold the exact intervening integers. The search
// is monotone and stops at the first n that fails.
func coalesceExponent(buf []byte, p int, ip uint32) int {
	best := 0
	for n := minCoalesceExponent; n <= maxCoalesceExponent; n++ {
		span := uint32(1) << uint(n)
		if ip&(span-1) != 0 {
			break
		}
		end := p + 5*int(span-1)
		if end+5 > len(buf) {
			break
		}
		endIP, endMask := Record(buf[end : end+5 : end+5]).Decode()
		if endMask != 32 || endIP != ip+span-1 {
			break
		}
		interiorAll32 := true
		for q := p + 5; q < end; q += 5 {
			if buf[q+4] != 32 {
				interiorAll32 = false
				break
			}
		}
		if !interiorAll32 {
			break
		}
		best = n
	}
	return best
}

// formatEntry renders ip/mask as "A.B.C.D" when mask is 32, or
// "A.B.C.D/M" otherwise, with unpadded decimal octets.
func formatEntry(ip uint32, mask uint8) string {
	a, b, c, d := byte(ip>>24), byte(ip>>16), byte(ip>>8), byte(ip)
	if mask == 32 {
		return fmt.Sprintf("%d.%d.%d.%d", a, b, c, d)
	}
	return fmt.Sprintf("%d.%d.%d.%d/%d", a, b, c, d, mask)
}
