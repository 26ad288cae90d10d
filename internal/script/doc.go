// Package script lets applications derive searchable fields with Lua.
//
// A user script defines plain functions that take one item and return a
// string (or array of strings). A key path of the form "lua:name" routes
// extraction through the function of that name; every other path falls
// through to the wrapped accessor. Scripts run in a restricted state with
// only the safe standard libraries loaded and no file, OS, or module
// access.
//
// The Lua runtime itself is not goroutine-safe; State serializes every
// entry point behind a mutex, including the Go-to-Lua conversion of
// arguments. An Accessor built on a State is therefore safe for
// concurrent use — parallel searches queue on the interpreter rather
// than race on it.
package script
