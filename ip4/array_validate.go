package ip4

// ValidateList walks entries in order, parsing each with ParseEntry, and
// returns the 1-based indices of the first n entries found invalid. It
// stops scanning as soon as the result reaches length n. The returned
// slice may be empty if every entry parses.
//
// ValidateList returns ErrBadArgument if n <= 0.
func ValidateList(entries []string, n int) ([]int, error) {
	if n <= 0 {
		return nil, ErrBadArgument
	}
	var invalid []int
	for i, s := range entries {
		if ParseEntry(s).Kind == Invalid {
			invalid = append(invalid, i+1)
			if len(invalid) >= n {
				break
			}
		}
	}
	return invalid, nil
}
