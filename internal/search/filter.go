package search

import "github.com/tidwall/match"

// Filter restricts which items participate in a search by glob-matching
// one designated field. Items whose field fails the include pattern, or
// hits the exclude pattern, are never scored. An item whose field cannot
// be extracted is admitted only when no include pattern is set.
type Filter struct {
	// Path is the field the patterns apply to.
	Path string

	// Include admits only items whose field matches. Empty means all.
	Include string

	// Exclude rejects items whose field matches. Empty means none.
	Exclude string
}

// Admit reports whether the item passes the filter.
func (f *Filter) Admit(accessor Accessor, item any) bool {
	if f.Include == "" && f.Exclude == "" {
		return true
	}

	value, ok := accessor.Value(item, f.Path)
	if !ok {
		return f.Include == ""
	}
	s, ok := value.(string)
	if !ok {
		return f.Include == ""
	}

	if f.Include != "" && !match.Match(s, f.Include) {
		return false
	}
	if f.Exclude != "" && match.Match(s, f.Exclude) {
		return false
	}
	return true
}
