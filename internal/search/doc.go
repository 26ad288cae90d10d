// Package search ranks structured candidate items against a free-text
// query using weighted fuzzy matching over configured fields.
//
// A Searcher is configured with Keys, each a (path, weight) pair, and an
// Accessor that knows how to read a path out of an item. For every item
// the searcher extracts one candidate string per key (array values expand
// to one candidate per element), gates each candidate through the cheap
// subsequence filter, scores survivors with the fuzzy matcher, applies the
// key weight, and keeps the single best candidate per item. Items with no
// matching candidate are dropped; the rest are returned ordered by
// descending weighted score, with ties kept in input order.
//
// Search is a pure function of its inputs: items are never copied or
// mutated and no state is shared between calls, so one Searcher may serve
// concurrent callers. AsyncSearcher and StreamSearcher layer worker-pool
// parallelism and per-keystroke cancellation on top of the same core.
package search
