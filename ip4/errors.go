package ip4

import "errors"

// ErrInvalidEntry is returned by Serialize and NormalizeText on the first
// syntactically invalid textual entry. No normalized output is produced.
var ErrInvalidEntry = errors.New("ip4: invalid entry")

// ErrBadArgument is returned when a count argument (such as Validate's n)
// is zero, negative, or otherwise out of range.
var ErrBadArgument = errors.New("ip4: bad argument")
