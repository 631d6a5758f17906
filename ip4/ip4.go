// Package ip4 normalizes lists of IPv4 addresses expressed as single
// addresses, CIDR blocks, or inclusive first-last ranges into a canonical,
// de-duplicated, sorted list in which contiguous power-of-two aligned /32
// runs are recoalesced into the tightest enclosing CIDR. It also validates
// textual IPv4 input drawn from an in-memory slice of strings or an
// incremental byte stream, without materializing the whole input.
package ip4

// ByteLen is the length in bytes of an IPv4 address.
const ByteLen = 4

// BitLen is the number of bits in an IPv4 address.
const BitLen = 32

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
