package script

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrStateClosed is returned when operating on a closed state.
var ErrStateClosed = errors.New("script: state is closed")

// State wraps gopher-lua with a restricted library set and panic
// recovery. The underlying LState is not goroutine-safe; the mutex only
// serializes Go-side entry points.
type State struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

// NewState creates a restricted Lua state.
func NewState() *State {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	// Safe subset only: no io, os, debug, or package.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Base opens loaders that can pull in arbitrary code; drop them.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	return &State{L: L}
}

// DoFile executes a Lua file, typically the user's field-function script.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.recovered(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes Lua source text.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.recovered(func() error {
		return s.L.DoString(code)
	})
}

// Call invokes a global Lua function with the given arguments and returns
// its first result.
func (s *State) Call(fn string, args ...lua.LValue) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.call(fn, args...)
}

// CallValue converts arg to a Lua value and invokes fn with it. The
// conversion happens under the state lock: building Lua tables touches
// the interpreter, so it must be serialized along with the call itself.
func (s *State) CallValue(fn string, arg any) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil, ErrStateClosed
	}
	return s.call(fn, toLua(s.L, arg))
}

// call runs a global function with the lock already held.
func (s *State) call(fn string, args ...lua.LValue) (lua.LValue, error) {
	if s.closed {
		return lua.LNil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal == lua.LNil {
		return lua.LNil, fmt.Errorf("script: function %q not defined", fn)
	}
	if fnVal.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("script: %q is not a function (got %s)", fn, fnVal.Type())
	}

	var ret lua.LValue = lua.LNil
	err := s.recovered(func() error {
		if err := s.L.CallByParam(lua.P{
			Fn:      fnVal,
			NRet:    1,
			Protect: true,
		}, args...); err != nil {
			return err
		}
		ret = s.L.Get(-1)
		s.L.Pop(1)
		return nil
	})
	if err != nil {
		return lua.LNil, err
	}
	return ret, nil
}

// HasFunction reports whether a global function of that name is defined.
func (s *State) HasFunction(fn string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.L.GetGlobal(fn).Type() == lua.LTFunction
}

// Close releases the Lua state. Close is idempotent.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// recovered runs fn, converting a Lua panic into an error.
func (s *State) recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script: lua panic: %v", r)
		}
	}()
	return fn()
}
