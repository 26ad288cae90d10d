package fuzzy

import (
	"strings"
	"unicode"
)

// Search bounds. Exceeding either makes a branch report no match rather
// than erroring; the caller sees a worse or absent score, never a failure.
const (
	// recursionLimit caps the number of search invocations per call,
	// bounding total work at a few passes over the target.
	recursionLimit = 5

	// maxMatches caps the number of matched positions tracked per branch,
	// independent of target length.
	maxMatches = 256
)

// Match reports whether pattern is a case-insensitive subsequence of
// target and, if so, its heuristic score under DefaultWeights.
func Match(pattern, target string) (int, bool) {
	score, _, ok := DefaultWeights().MatchPositions(pattern, target)
	return score, ok
}

// Match is like the package-level Match using these weights.
func (w Weights) Match(pattern, target string) (int, bool) {
	score, _, ok := w.MatchPositions(pattern, target)
	return score, ok
}

// MatchPositions is Match plus the rune indices of the winning alignment,
// one strictly increasing index per pattern rune. Positions are rune
// indices into target, suitable for highlighting.
func (w Weights) MatchPositions(pattern, target string) (int, []int, bool) {
	if pattern == "" || target == "" {
		return 0, nil, false
	}

	m := &matcher{
		pattern: []rune(strings.ToLower(pattern)),
		lower:   []rune(strings.ToLower(target)),
		orig:    []rune(target),
		weights: w,
	}

	score, positions, ok := m.search(0, 0, nil)
	if !ok {
		return 0, nil, false
	}
	return score, positions, true
}

// matcher holds the per-call immutable inputs plus the shared recursion
// budget, so the search only threads cursor state and the owned positions
// slice.
type matcher struct {
	pattern []rune
	lower   []rune
	orig    []rune
	weights Weights
	calls   int
}

// search advances through target from tIdx consuming pattern from pIdx.
// matches is owned by this branch; it is cloned before handing a copy to a
// recursive branch so sibling branches never alias each other's buffers.
func (m *matcher) search(pIdx, tIdx int, matches []int) (int, []int, bool) {
	m.calls++
	if m.calls >= recursionLimit {
		return 0, nil, false
	}
	if pIdx >= len(m.pattern) || tIdx >= len(m.lower) {
		return 0, nil, false
	}

	var (
		bestScore   int
		bestMatches []int
		recursed    bool
	)

	for pIdx < len(m.pattern) && tIdx < len(m.lower) {
		if m.pattern[pIdx] == m.lower[tIdx] {
			if len(matches) >= maxMatches {
				return 0, nil, false
			}

			// Try matching this same pattern rune at a later target
			// position. A later occurrence can land on a word boundary
			// and outscore the greedy acceptance below.
			if rs, rm, ok := m.search(pIdx, tIdx+1, cloneMatches(matches)); ok {
				if !recursed || rs > bestScore {
					bestScore, bestMatches = rs, rm
				}
				recursed = true
			}

			matches = append(matches, tIdx)
			pIdx++
		}
		tIdx++
	}

	matched := pIdx == len(m.pattern)
	score := 0
	if matched {
		score = m.score(matches)
	}

	// A recursive branch wins only with a full match and a strictly
	// higher score.
	if recursed && (!matched || bestScore > score) {
		return bestScore, bestMatches, true
	}
	if matched {
		return score, matches, true
	}
	return 0, nil, false
}

// score rates a complete alignment. matches is non-empty and strictly
// increasing.
func (m *matcher) score(matches []int) int {
	score := m.weights.BaseScore

	leading := m.weights.LeadingPenalty * matches[0]
	if leading < m.weights.LeadingPenaltyFloor {
		leading = m.weights.LeadingPenaltyFloor
	}
	score += leading

	score += m.weights.UnmatchedPenalty * (len(m.lower) - len(matches))

	for i, idx := range matches {
		if i > 0 && idx == matches[i-1]+1 {
			score += m.weights.AdjacencyBonus
		}

		if idx == 0 {
			score += m.weights.FirstLetterBonus
			continue
		}

		prev, curr := m.orig[idx-1], m.orig[idx]
		if prev == '_' || prev == ' ' {
			score += m.weights.SeparatorBonus
		}
		if unicode.IsLower(prev) && !unicode.IsLower(curr) {
			score += m.weights.CamelBonus
		}
	}

	return score
}

func cloneMatches(matches []int) []int {
	if matches == nil {
		return nil
	}
	out := make([]int, len(matches))
	copy(out, matches)
	return out
}
