// Package fuzzy implements scored fuzzy subsequence matching for
// interactive filtering.
//
// The package provides two layers. IsSubsequence is a cheap single-pass
// containment test used to discard obviously non-matching candidates.
// Match and MatchPositions run a bounded backtracking search that finds a
// high-scoring alignment of the pattern against the target and report a
// heuristic relevance score.
//
// # Scoring
//
// A full match starts from a base score and is adjusted by:
//   - adjacency bonus for runs of consecutive matched runes
//   - separator bonus for matches directly after '_' or ' '
//   - camel bonus for matches on a lower-to-upper case transition
//   - first-letter bonus when the match starts the target
//   - a penalty per target rune before the first match (floored)
//   - a penalty per target rune left unmatched
//
// Backtracking exists because the greedy leftmost alignment is not always
// the best one: skipping an early occurrence of a rune can land a later
// occurrence on a word boundary and collect its bonus. The search is
// bounded by a recursion budget and a matched-position cap so that cost
// stays small per call; exceeding a bound makes that branch report no
// match. This trades optimality for predictable latency, which is what a
// per-keystroke caller needs.
//
// # Usage
//
//	if fuzzy.IsSubsequence(query, name) {
//	    if score, ok := fuzzy.Match(query, name); ok {
//	        // rank by score
//	    }
//	}
//
// All matching is case-insensitive and rune-correct. Both functions are
// pure: they never mutate their inputs and allocate only transient local
// state, so concurrent callers need no coordination.
package fuzzy
