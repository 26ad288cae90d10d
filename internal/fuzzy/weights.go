package fuzzy

// Weights configures the scoring heuristic. Bonuses are positive,
// penalties negative. The zero value scores every match as zero; use
// DefaultWeights for the standard tuning.
type Weights struct {
	// BaseScore is the starting score for any full match.
	BaseScore int

	// AdjacencyBonus is added when a matched rune directly follows the
	// previous matched rune.
	AdjacencyBonus int

	// SeparatorBonus is added when the rune before a match is '_' or ' '.
	SeparatorBonus int

	// CamelBonus is added when the rune before a match is lowercase and
	// the matched rune is not.
	CamelBonus int

	// FirstLetterBonus is added instead of the boundary bonuses when the
	// match is at target position 0.
	FirstLetterBonus int

	// LeadingPenalty is applied per target rune before the first match.
	LeadingPenalty int

	// LeadingPenaltyFloor bounds the total leading penalty.
	LeadingPenaltyFloor int

	// UnmatchedPenalty is applied per target rune not consumed by a match.
	UnmatchedPenalty int
}

// DefaultWeights returns the standard scoring weights. Every caller in
// this repository uses these.
func DefaultWeights() Weights {
	return Weights{
		BaseScore:           100,
		AdjacencyBonus:      30,
		SeparatorBonus:      30,
		CamelBonus:          30,
		FirstLetterBonus:    15,
		LeadingPenalty:      -15,
		LeadingPenaltyFloor: -200,
		UnmatchedPenalty:    -5,
	}
}
