package search

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/winnow/internal/fuzzy"
)

// Errors reported during searcher construction.
var (
	// ErrNoKeys is returned when no keys are configured.
	ErrNoKeys = errors.New("search: no keys configured")

	// ErrInvalidWeight is returned for a key weight that is not strictly
	// positive.
	ErrInvalidWeight = errors.New("search: key weight must be positive")
)

// Key identifies one searchable field of a candidate item: a path the
// accessor understands and a strictly positive score multiplier.
type Key struct {
	Path   string
	Weight float64
}

// Result is one ranked item. Item is the original reference from the
// input collection, never a copy. Key and Positions identify the winning
// field and its matched rune indices for highlighting.
type Result struct {
	Item      any
	Score     float64
	Key       string
	Positions []int
}

// Options configures a Searcher.
type Options struct {
	// Keys are the (path, weight) pairs to search over. Required.
	Keys []Key

	// Accessor resolves key paths against items. Defaults to MapAccessor.
	Accessor Accessor

	// Weights tune the fuzzy scorer. Zero value means fuzzy.DefaultWeights.
	Weights fuzzy.Weights

	// Limit caps the number of results. 0 means unlimited.
	Limit int

	// Filter restricts which items are considered at all. Optional.
	Filter *Filter
}

// Searcher ranks items against a query. It holds only immutable
// configuration, so a single Searcher is safe for concurrent use.
type Searcher struct {
	keys     []Key
	accessor Accessor
	weights  fuzzy.Weights
	limit    int
	filter   *Filter
}

// NewSearcher validates opts and builds a Searcher.
func NewSearcher(opts Options) (*Searcher, error) {
	if len(opts.Keys) == 0 {
		return nil, ErrNoKeys
	}
	for _, k := range opts.Keys {
		if k.Weight <= 0 {
			return nil, fmt.Errorf("%w: key %q has weight %v", ErrInvalidWeight, k.Path, k.Weight)
		}
	}

	accessor := opts.Accessor
	if accessor == nil {
		accessor = MapAccessor{}
	}

	weights := opts.Weights
	if weights == (fuzzy.Weights{}) {
		weights = fuzzy.DefaultWeights()
	}

	keys := make([]Key, len(opts.Keys))
	copy(keys, opts.Keys)

	return &Searcher{
		keys:     keys,
		accessor: accessor,
		weights:  weights,
		limit:    opts.Limit,
		filter:   opts.Filter,
	}, nil
}

// Search ranks items against pattern. Items with no matching field are
// excluded; the rest are ordered by descending weighted score. Equal
// scores keep their input order.
func (s *Searcher) Search(pattern string, items []any) []Result {
	if pattern == "" {
		return nil
	}

	results := make([]Result, 0, len(items)/4+1)
	for _, item := range items {
		if s.filter != nil && !s.filter.Admit(s.accessor, item) {
			continue
		}
		if r, ok := s.searchItem(pattern, item); ok {
			results = append(results, r)
		}
	}

	// Stable keeps input order among equal scores, so repeated searches
	// over the same collection are reproducible.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if s.limit > 0 && len(results) > s.limit {
		results = results[:s.limit]
	}
	return results
}

// searchItem scores one item and keeps its single best weighted candidate.
func (s *Searcher) searchItem(pattern string, item any) (Result, bool) {
	var (
		best    Result
		matched bool
	)

	consider := func(value string, key Key) {
		if value == "" || !fuzzy.IsSubsequence(pattern, value) {
			return
		}
		score, positions, ok := s.weights.MatchPositions(pattern, value)
		if !ok {
			return
		}
		weighted := float64(score) * key.Weight
		if !matched || weighted > best.Score {
			best = Result{
				Item:      item,
				Score:     weighted,
				Key:       key.Path,
				Positions: positions,
			}
			matched = true
		}
	}

	for _, key := range s.keys {
		value, ok := s.accessor.Value(item, key.Path)
		if !ok {
			continue
		}
		for _, candidate := range candidateStrings(value) {
			consider(candidate, key)
		}
	}

	return best, matched
}

// candidateStrings expands an extracted value into the strings to score.
// Sequences contribute one candidate per string element; non-string
// values contribute nothing and are skipped silently.
func candidateStrings(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, el := range v {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
