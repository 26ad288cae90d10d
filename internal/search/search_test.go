package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/dshills/winnow/internal/fuzzy"
)

func newTestSearcher(t *testing.T, opts Options) *Searcher {
	t.Helper()
	s, err := NewSearcher(opts)
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}
	return s
}

func itemNames(results []Result) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Item.(map[string]any)["name"].(string)
	}
	return names
}

func TestSearchBasic(t *testing.T) {
	items := []any{
		map[string]any{"name": "Node A"},
		map[string]any{"name": "Other"},
		map[string]any{"name": "Sandbox"},
	}

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "name", Weight: 1}}})

	results := s.Search("nd", items)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), itemNames(results))
	}

	// "Node A" matches at the word start with adjacency; "Sandbox" pays
	// the leading penalty. Scores must be descending.
	if got := itemNames(results); got[0] != "Node A" || got[1] != "Sandbox" {
		t.Errorf("order = %v, want [Node A Sandbox]", got)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v >= %v expected", results[0].Score, results[1].Score)
	}
}

func TestSearchExcludesNonMatches(t *testing.T) {
	items := []any{
		map[string]any{"name": "Other"},
		map[string]any{"title": "no name field"},
		map[string]any{"name": 99},
	}

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "name", Weight: 1}}})
	if results := s.Search("nd", items); len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestSearchEmptyPattern(t *testing.T) {
	s := newTestSearcher(t, Options{Keys: []Key{{Path: "name", Weight: 1}}})
	if results := s.Search("", []any{map[string]any{"name": "Node"}}); results != nil {
		t.Errorf("empty pattern should match nothing, got %v", results)
	}
}

func TestSearchWeighting(t *testing.T) {
	items := []any{
		map[string]any{"name": "node", "path": "node"},
	}

	s := newTestSearcher(t, Options{Keys: []Key{
		{Path: "name", Weight: 1},
		{Path: "path", Weight: 10},
	}})

	results := s.Search("node", items)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	// Both fields match identically; the weight-10 key must win.
	if results[0].Key != "path" {
		t.Errorf("winning key = %q, want %q", results[0].Key, "path")
	}

	score, _ := fuzzy.Match("node", "node")
	if want := float64(score) * 10; results[0].Score != want {
		t.Errorf("score = %v, want %v", results[0].Score, want)
	}
}

func TestSearchBestFieldOnly(t *testing.T) {
	// The item score reflects exactly one field, not a sum.
	items := []any{
		map[string]any{"name": "node", "alias": "mynode"},
	}

	s := newTestSearcher(t, Options{Keys: []Key{
		{Path: "name", Weight: 1},
		{Path: "alias", Weight: 1},
	}})

	results := s.Search("node", items)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	best, _ := fuzzy.Match("node", "node")
	if results[0].Score != float64(best) {
		t.Errorf("score = %v, want %v (best single field)", results[0].Score, float64(best))
	}
	if results[0].Key != "name" {
		t.Errorf("winning key = %q, want name", results[0].Key)
	}
}

func TestSearchArrayField(t *testing.T) {
	items := []any{
		map[string]any{"name": "a", "tags": []any{"zzz", "node", "nickel"}},
	}

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "tags", Weight: 2}}})

	results := s.Search("node", items)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	// Best element only: "node" is an exact-shape match, "nickel" is not
	// even a subsequence match for the full pattern.
	score, _ := fuzzy.Match("node", "node")
	if want := float64(score) * 2; results[0].Score != want {
		t.Errorf("score = %v, want %v", results[0].Score, want)
	}
}

func TestSearchStringSliceField(t *testing.T) {
	items := []any{
		map[string]any{"tags": []string{"other", "node"}},
	}

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "tags", Weight: 1}}})
	if results := s.Search("node", items); len(results) != 1 {
		t.Fatalf("[]string field should expand to candidates, got %d results", len(results))
	}
}

func TestSearchScalarItems(t *testing.T) {
	// MapAccessor passes non-map items through, so plain strings are
	// searchable with any key path.
	items := []any{"Node A", "Other", "Sandbox"}

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "value", Weight: 1}}})
	results := s.Search("nd", items)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Item != "Node A" {
		t.Errorf("first = %v, want Node A", results[0].Item)
	}
}

func TestSearchTieOrderIsInputOrder(t *testing.T) {
	// Identical names tie exactly; the id field tracks input position.
	items := []any{
		map[string]any{"name": "node one", "id": 0},
		map[string]any{"name": "node one", "id": 1},
		map[string]any{"name": "node one", "id": 2},
	}

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "name", Weight: 1}}})
	results := s.Search("node", items)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if got := r.Item.(map[string]any)["id"]; got != i {
			t.Errorf("result %d has id %v, want %d", i, got, i)
		}
	}
}

func TestSearchLimit(t *testing.T) {
	var items []any
	for i := 0; i < 50; i++ {
		items = append(items, map[string]any{"name": fmt.Sprintf("node%d", i)})
	}

	s := newTestSearcher(t, Options{
		Keys:  []Key{{Path: "name", Weight: 1}},
		Limit: 5,
	})
	if results := s.Search("node", items); len(results) != 5 {
		t.Errorf("got %d results, want 5", len(results))
	}
}

func TestSearchIdempotent(t *testing.T) {
	items := []any{
		map[string]any{"name": "Node A"},
		map[string]any{"name": "Sandbox"},
		map[string]any{"name": "candor"},
	}

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "name", Weight: 1.5}}})

	first := s.Search("nd", items)
	second := s.Search("nd", items)
	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a := first[i].Item.(map[string]any)["name"]
		b := second[i].Item.(map[string]any)["name"]
		if a != b || first[i].Score != second[i].Score {
			t.Errorf("result %d differs between runs", i)
		}
	}
}

func TestSearchDoesNotMutateItems(t *testing.T) {
	item := map[string]any{"name": "Node A"}
	items := []any{item}

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "name", Weight: 1}}})
	results := s.Search("nd", items)

	if len(results) != 1 || results[0].Item.(map[string]any)["name"] != "Node A" {
		t.Fatal("expected the original item back")
	}
	if len(item) != 1 {
		t.Errorf("item was mutated: %v", item)
	}
}

func TestSearchWithFilter(t *testing.T) {
	items := []any{
		map[string]any{"name": "node.go", "kind": "file"},
		map[string]any{"name": "node", "kind": "dir"},
	}

	s := newTestSearcher(t, Options{
		Keys:   []Key{{Path: "name", Weight: 1}},
		Filter: &Filter{Path: "kind", Include: "file"},
	})

	results := s.Search("node", items)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Item.(map[string]any)["kind"] != "file" {
		t.Error("filter admitted the wrong item")
	}
}

func TestSearchWithJSONAccessor(t *testing.T) {
	items := []any{
		`{"name":"Node A","tags":["x"]}`,
		`{"name":"Other"}`,
		`{"name":"Sandbox"}`,
	}

	s := newTestSearcher(t, Options{
		Keys:     []Key{{Path: "name", Weight: 1}},
		Accessor: JSONAccessor{},
	})

	results := s.Search("nd", items)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Item != items[0] {
		t.Error("raw JSON item reference should be returned unchanged")
	}
}

func TestNewSearcherValidation(t *testing.T) {
	if _, err := NewSearcher(Options{}); err != ErrNoKeys {
		t.Errorf("expected ErrNoKeys, got %v", err)
	}

	_, err := NewSearcher(Options{Keys: []Key{{Path: "name", Weight: 0}}})
	if err == nil {
		t.Fatal("expected error for zero weight")
	}

	_, err = NewSearcher(Options{Keys: []Key{{Path: "name", Weight: -1}}})
	if err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestFilterAdmit(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		item   any
		want   bool
	}{
		{"no patterns", Filter{Path: "name"}, map[string]any{"name": "x"}, true},
		{"include hit", Filter{Path: "name", Include: "*.go"}, map[string]any{"name": "a.go"}, true},
		{"include miss", Filter{Path: "name", Include: "*.go"}, map[string]any{"name": "a.txt"}, false},
		{"exclude hit", Filter{Path: "name", Exclude: "*_test.go"}, map[string]any{"name": "a_test.go"}, false},
		{"exclude miss", Filter{Path: "name", Exclude: "*_test.go"}, map[string]any{"name": "a.go"}, true},
		{"missing field with include", Filter{Path: "name", Include: "*"}, map[string]any{}, false},
		{"missing field exclude only", Filter{Path: "name", Exclude: "*.go"}, map[string]any{}, true},
	}

	var accessor MapAccessor
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Admit(accessor, tt.item); got != tt.want {
				t.Errorf("Admit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsyncSearchMatchesSync(t *testing.T) {
	var items []any
	for i := 0; i < 500; i++ {
		items = append(items, map[string]any{"name": fmt.Sprintf("item_%d_node", i)})
	}

	s := newTestSearcher(t, Options{
		Keys:  []Key{{Path: "name", Weight: 1}},
		Limit: 20,
	})
	async := NewAsyncSearcher(s, 4)

	sync := s.Search("node", items)
	par := async.Search(context.Background(), "node", items)

	if len(sync) != len(par) {
		t.Fatalf("result counts differ: sync %d, parallel %d", len(sync), len(par))
	}
	for i := range sync {
		a := sync[i].Item.(map[string]any)["name"]
		b := par[i].Item.(map[string]any)["name"]
		if a != b || sync[i].Score != par[i].Score {
			t.Errorf("result %d differs: sync %v, parallel %v", i, sync[i].Score, par[i].Score)
		}
	}
}

func TestAsyncSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "name", Weight: 1}}})
	async := NewAsyncSearcher(s, 2)

	var items []any
	for i := 0; i < 100; i++ {
		items = append(items, map[string]any{"name": "node"})
	}

	// A pre-canceled context must still return, with partial or empty
	// results.
	results := async.Search(ctx, "node", items)
	if len(results) > len(items) {
		t.Errorf("got %d results for %d items", len(results), len(items))
	}
}

func TestStreamSearcher(t *testing.T) {
	items := []any{
		map[string]any{"name": "Node A"},
		map[string]any{"name": "Sandbox"},
	}

	s := newTestSearcher(t, Options{Keys: []Key{{Path: "name", Weight: 1}}})
	stream := NewStreamSearcher(s, NewCache(10))
	defer stream.Cancel()

	results, open := <-stream.Search("nd", items)
	if !open {
		t.Fatal("superseded channel closed without a send")
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if stream.LastQuery() != "nd" {
		t.Errorf("LastQuery = %q, want nd", stream.LastQuery())
	}

	// Cached path returns the same results.
	cached, open := <-stream.Search("nd", items)
	if !open || len(cached) != 2 {
		t.Fatalf("cached search: open=%v len=%d", open, len(cached))
	}

	stream.InvalidateCache()
	fresh, open := <-stream.Search("nd", items)
	if !open || len(fresh) != 2 {
		t.Fatalf("post-invalidate search: open=%v len=%d", open, len(fresh))
	}
}

func TestCacheLRU(t *testing.T) {
	c := NewCache(2)

	c.Set("a", []Result{{Score: 1}})
	c.Set("b", []Result{{Score: 2}})
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	// Touch "a" so "b" is the eviction candidate.
	if got := c.Get("a"); got == nil {
		t.Fatal("expected a hit for a")
	}

	c.Set("c", []Result{{Score: 3}})
	if c.Get("b") != nil {
		t.Error("b should have been evicted")
	}
	if c.Get("a") == nil || c.Get("c") == nil {
		t.Error("a and c should be cached")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestCacheCopies(t *testing.T) {
	c := NewCache(10)
	c.Set("q", []Result{{Score: 1, Positions: []int{0, 1}}})

	got := c.Get("q")
	got[0].Score = 99
	got[0].Positions[0] = 99

	again := c.Get("q")
	if again[0].Score != 1 {
		t.Error("cached score was mutated through the returned slice")
	}
	if again[0].Positions[0] != 0 {
		t.Error("cached positions were mutated through the returned slice")
	}
}

func BenchmarkSearch(b *testing.B) {
	var items []any
	for i := 0; i < 1000; i++ {
		items = append(items, map[string]any{
			"name": fmt.Sprintf("component_%d_handler", i),
			"path": fmt.Sprintf("internal/pkg%d/handler.go", i),
		})
	}

	s, err := NewSearcher(Options{Keys: []Key{
		{Path: "name", Weight: 2},
		{Path: "path", Weight: 1},
	}})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Search("handler", items)
	}
}
