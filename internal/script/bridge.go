package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// toLua converts a Go item into a Lua value for a field function.
// Unsupported types become nil; a field function seeing nil simply
// contributes no candidate.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case []string:
		t := L.NewTable()
		for i, el := range val {
			t.RawSetInt(i+1, lua.LString(el))
		}
		return t
	case []any:
		t := L.NewTable()
		for i, el := range val {
			t.RawSetInt(i+1, toLua(L, el))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, el := range val {
			t.RawSetString(k, toLua(L, el))
		}
		return t
	default:
		return lua.LString(fmt.Sprintf("%v", val))
	}
}

// fromLua converts a field function's return into the value shapes the
// searcher accepts: a string, a []any of strings, or nothing.
func fromLua(lv lua.LValue) (any, bool) {
	switch v := lv.(type) {
	case lua.LString:
		return string(v), true
	case lua.LNumber:
		return v.String(), true
	case *lua.LTable:
		var out []any
		v.ForEach(func(_, el lua.LValue) {
			if s, ok := el.(lua.LString); ok {
				out = append(out, string(s))
			}
		})
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}
