package script

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/winnow/internal/search"
)

func newTestState(t *testing.T, code string) *State {
	t.Helper()
	s := NewState()
	t.Cleanup(func() { _ = s.Close() })
	if err := s.DoString(code); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	return s
}

func TestStateCall(t *testing.T) {
	s := newTestState(t, `
		function shout(v)
			return string.upper(v)
		end
	`)

	ret, err := s.Call("shout", toLua(s.L, "node"))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := fromLua(ret); got != "NODE" {
		t.Errorf("got %v, want NODE", got)
	}
}

func TestStateCallUndefined(t *testing.T) {
	s := newTestState(t, ``)

	if _, err := s.Call("missing"); err == nil {
		t.Error("expected error calling an undefined function")
	}
	if s.HasFunction("missing") {
		t.Error("HasFunction should be false for undefined name")
	}
}

func TestStateCallError(t *testing.T) {
	s := newTestState(t, `
		function boom(v)
			error("deliberate")
		end
	`)

	_, err := s.Call("boom", toLua(s.L, "x"))
	if err == nil || !strings.Contains(err.Error(), "deliberate") {
		t.Errorf("expected lua error, got %v", err)
	}
}

func TestStateSandbox(t *testing.T) {
	s := newTestState(t, ``)

	// io/os never loaded, loaders removed.
	for _, code := range []string{
		`return io.open("/etc/passwd")`,
		`return os.execute("true")`,
		`return dofile("x.lua")`,
		`return loadstring("return 1")`,
	} {
		if err := s.DoString(code); err == nil {
			t.Errorf("expected sandbox error for %q", code)
		}
	}
}

func TestStateClosed(t *testing.T) {
	s := NewState()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := s.DoString(`x = 1`); err != ErrStateClosed {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
}

func TestAccessorComputedField(t *testing.T) {
	s := newTestState(t, `
		function label(item)
			return item.kind .. "/" .. item.name
		end
	`)
	accessor := NewAccessor(s, nil)

	item := map[string]any{"name": "alpha", "kind": "svc"}

	got, ok := accessor.Value(item, "lua:label")
	if !ok || got != "svc/alpha" {
		t.Errorf("got %v (%v), want svc/alpha", got, ok)
	}

	// Non-lua paths fall through to the map accessor.
	got, ok = accessor.Value(item, "name")
	if !ok || got != "alpha" {
		t.Errorf("fallback got %v (%v), want alpha", got, ok)
	}
}

func TestAccessorArrayReturn(t *testing.T) {
	s := newTestState(t, `
		function aliases(item)
			return {item.name, "alt_" .. item.name}
		end
	`)
	accessor := NewAccessor(s, nil)

	got, ok := accessor.Value(map[string]any{"name": "n"}, "lua:aliases")
	if !ok {
		t.Fatal("expected a value")
	}
	arr, ok := got.([]any)
	if !ok || len(arr) != 2 || arr[1] != "alt_n" {
		t.Errorf("got %v, want [n alt_n]", got)
	}
}

func TestAccessorErrorIsNoCandidate(t *testing.T) {
	s := newTestState(t, `
		function bad(item)
			return item.missing.deep
		end
	`)
	accessor := NewAccessor(s, nil)

	if _, ok := accessor.Value(map[string]any{}, "lua:bad"); ok {
		t.Error("script error should yield no candidate, not a value")
	}
	if _, ok := accessor.Value(map[string]any{}, "lua:undefined"); ok {
		t.Error("undefined function should yield no candidate")
	}
}

func TestAccessorWithSearcher(t *testing.T) {
	s := newTestState(t, `
		function display(item)
			return item.first .. " " .. item.last
		end
	`)

	searcher, err := search.NewSearcher(search.Options{
		Keys:     []search.Key{{Path: "lua:display", Weight: 1}},
		Accessor: NewAccessor(s, nil),
	})
	if err != nil {
		t.Fatal(err)
	}

	items := []any{
		map[string]any{"first": "Node", "last": "Alpha"},
		map[string]any{"first": "Zed", "last": "Omega"},
	}

	results := searcher.Search("na", items)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if got := results[0].Item.(map[string]any)["first"]; got != "Node" {
		t.Errorf("wrong item matched: first = %v", got)
	}
}

func TestAccessorConcurrent(t *testing.T) {
	// Table arguments are built on the interpreter, so the conversion
	// must be serialized along with the call itself.
	s := newTestState(t, `
		function display(item)
			return item.first .. " " .. item.last
		end
	`)
	accessor := NewAccessor(s, nil)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item := map[string]any{"first": "Node", "last": "Alpha"}
			for i := 0; i < 50; i++ {
				v, ok := accessor.Value(item, "lua:display")
				if !ok {
					errs <- "no candidate"
					return
				}
				if v != "Node Alpha" {
					errs <- fmt.Sprintf("got %v", v)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Errorf("concurrent access: %s", msg)
	}
}
