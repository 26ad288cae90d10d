package search

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Accessor reads a field value out of a candidate item. Implementations
// must not mutate the item. The second return is false when the path does
// not resolve to a value.
type Accessor interface {
	Value(item any, path string) (any, bool)
}

// AccessorFunc adapts a closure to the Accessor interface.
type AccessorFunc func(item any, path string) (any, bool)

// Value implements Accessor.
func (f AccessorFunc) Value(item any, path string) (any, bool) {
	return f(item, path)
}

// MapAccessor resolves paths against map[string]any items. A non-map item
// is returned unchanged regardless of path, so plain strings work without
// any key configuration. An own key exactly equal to the path wins before
// dot-delimited traversal, which lets flat keys contain literal dots.
type MapAccessor struct{}

// Value implements Accessor.
func (MapAccessor) Value(item any, path string) (any, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return item, true
	}

	if v, ok := m[path]; ok {
		return v, true
	}

	return getByPath(m, path)
}

// getByPath walks a nested map using a dot-separated path.
func getByPath(data map[string]any, path string) (any, bool) {
	current := any(data)

	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		val, exists := m[part]
		if !exists {
			return nil, false
		}

		current = val
	}

	return current, true
}

// JSONAccessor resolves paths against raw JSON documents held as string,
// []byte, or json.RawMessage. Items of any other type fall back to
// MapAccessor semantics, so mixed collections still work. As with
// MapAccessor, a top-level key exactly equal to the path is tried before
// the path is interpreted as a gjson query.
type JSONAccessor struct{}

// Value implements Accessor.
func (JSONAccessor) Value(item any, path string) (any, bool) {
	doc, ok := rawJSON(item)
	if !ok {
		return MapAccessor{}.Value(item, path)
	}

	// Literal key first: escape dots so "a.b" finds a flat key before a
	// nested one.
	if strings.Contains(path, ".") {
		if res := gjson.Get(doc, escapeDots(path)); res.Exists() {
			return jsonValue(res), true
		}
	}

	res := gjson.Get(doc, path)
	if !res.Exists() {
		return nil, false
	}
	return jsonValue(res), true
}

// rawJSON extracts a raw JSON document from an item, if it holds one.
func rawJSON(item any) (string, bool) {
	switch v := item.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.RawMessage:
		return string(v), true
	default:
		return "", false
	}
}

// jsonValue converts a gjson result to the value shapes the searcher
// consumes: strings stay strings, arrays become []any of element values.
func jsonValue(res gjson.Result) any {
	if res.IsArray() {
		arr := res.Array()
		out := make([]any, len(arr))
		for i, el := range arr {
			out[i] = el.Value()
		}
		return out
	}
	return res.Value()
}

func escapeDots(path string) string {
	return strings.ReplaceAll(path, ".", `\.`)
}
