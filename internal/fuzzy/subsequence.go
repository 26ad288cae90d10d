package fuzzy

import "unicode"

// IsSubsequence reports whether every rune of pattern appears in target in
// the same relative order, not necessarily contiguously. Comparison is
// case-insensitive. An empty pattern or empty target never matches; a
// query should not vacuously match everything.
//
// This is a linear single pass with no backtracking, intended as a fast
// gate in front of Match.
func IsSubsequence(pattern, target string) bool {
	if pattern == "" || target == "" {
		return false
	}

	p := []rune(pattern)
	idx := 0

	for _, r := range target {
		if unicode.ToLower(r) == unicode.ToLower(p[idx]) {
			idx++
			if idx == len(p) {
				return true
			}
		}
	}

	return false
}
