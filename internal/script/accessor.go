package script

import (
	"strings"

	"github.com/dshills/winnow/internal/search"
)

// PathPrefix marks a key path as script-computed: "lua:display" calls the
// global Lua function display(item).
const PathPrefix = "lua:"

// Accessor resolves "lua:" key paths by calling user-defined field
// functions; all other paths go to the fallback accessor. The zero value
// is not usable; construct with NewAccessor.
//
// The underlying Lua state serializes every entry point behind its
// mutex, so an Accessor is safe for concurrent use; concurrent callers
// simply queue on the interpreter.
type Accessor struct {
	state    *State
	fallback search.Accessor
}

// NewAccessor builds an accessor over a loaded script state. fallback
// handles non-script paths and may not be nil in practice; a nil fallback
// defaults to search.MapAccessor.
func NewAccessor(state *State, fallback search.Accessor) *Accessor {
	if fallback == nil {
		fallback = search.MapAccessor{}
	}
	return &Accessor{
		state:    state,
		fallback: fallback,
	}
}

// Value implements search.Accessor.
func (a *Accessor) Value(item any, path string) (any, bool) {
	fn, ok := strings.CutPrefix(path, PathPrefix)
	if !ok {
		return a.fallback.Value(item, path)
	}

	// Errors from user scripts mean "no candidate", matching how every
	// other extraction miss behaves.
	ret, err := a.state.CallValue(fn, item)
	if err != nil {
		return nil, false
	}
	return fromLua(ret)
}
