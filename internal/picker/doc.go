// Package picker implements the interactive terminal UI: a prompt line,
// a ranked result list re-ranked on every keystroke, and matched-rune
// highlighting.
//
// The picker owns the tcell screen for the duration of Run and re-ranks
// through a search.StreamSearcher, so a keystroke arriving mid-search
// cancels the superseded query. When wired to a source watcher it reloads
// the item collection in place and re-runs the current query.
//
// Tests drive the picker through tcell's SimulationScreen.
package picker
