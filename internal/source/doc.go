// Package source loads candidate item collections for searching.
//
// A Source produces the []any slice the searcher ranks. LineSource treats
// each line of plain text as one scalar item. JSONSource accepts either a
// single JSON array document or NDJSON and keeps every item as its raw
// JSON text, so field extraction stays lazy and items are never decoded
// into intermediate structures.
//
// Watcher notifies when the backing file changes, so an interactive
// consumer can reload items and invalidate its result cache.
package source
