package ip4

// Record is the on-wire form used internally for sorting: 5 bytes, IPv4
// in big-endian order followed by a mask in [8,32]. Lexicographic byte
// comparison over a Record is the canonical order — primarily by numeric
// IP ascending, secondarily by mask ascending, so a broader network sorts
// before a narrower one rooted at the same address.
type Record [5]byte

// EncodeRecord packs ip and mask into their fixed 5-byte wire form:
// [ip>>24, ip>>16, ip>>8, ip, mask]. There are no endianness surprises —
// the wire order is always big-endian regardless of host architecture.
func EncodeRecord(ip uint32, mask uint8) Record {
	return Record{
		byte(ip >> 24),
		byte(ip >> 16),
		byte(ip >> 8),
		byte(ip),
		mask,
	}
}

// Decode is the inverse of EncodeRecord.
func (r Record) Decode() (ip uint32, mask uint8) {
	ip = uint32(r[0])<<24 | uint32(r[1])<<16 | uint32(r[2])<<8 | uint32(r[3])
	mask = r[4]
	return ip, mask
}

// Less reports whether r sorts strictly before other under the canonical
// 5-byte lexicographic order.
func (r Record) Less(other Record) bool {
	for i := 0; i < 5; i++ {
		if r[i] != other[i] {
			return r[i] < other[i]
		}
	}
	return false
}
