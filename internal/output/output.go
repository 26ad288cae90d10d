// Package output renders search results for filter-mode consumers.
//
// Three formats are supported: plain text (one line per result), TSV
// (score, key, value), and JSON (the original item document with _score
// and _key fields injected, one document per line). JSON injection uses
// sjson so raw JSON items pass through byte-for-byte apart from the added
// fields.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/dshills/winnow/internal/search"
)

// Format selects a result encoding.
type Format int

const (
	// FormatText prints one item per line, optionally score-prefixed.
	FormatText Format = iota
	// FormatTSV prints score, winning key, and item separated by tabs.
	FormatTSV
	// FormatJSON prints one JSON document per result with _score and
	// _key injected.
	FormatJSON
)

// String returns the format's flag value.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatTSV:
		return "tsv"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat parses a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "tsv":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("output: unknown format %q", s)
	}
}

// Writer emits results in a chosen format.
type Writer struct {
	w          io.Writer
	format     Format
	withScores bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithScores prefixes text output with the score column. TSV and JSON
// always carry scores.
func WithScores() Option {
	return func(w *Writer) {
		w.withScores = true
	}
}

// NewWriter creates a result writer.
func NewWriter(w io.Writer, format Format, opts ...Option) *Writer {
	out := &Writer{w: w, format: format}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

// Write emits all results. It stops at the first write error.
func (w *Writer) Write(results []search.Result) error {
	for _, r := range results {
		var err error
		switch w.format {
		case FormatTSV:
			err = w.writeTSV(r)
		case FormatJSON:
			err = w.writeJSON(r)
		default:
			err = w.writeText(r)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeText(r search.Result) error {
	var err error
	if w.withScores {
		_, err = fmt.Fprintf(w.w, "%g\t%s\n", r.Score, itemText(r.Item))
	} else {
		_, err = fmt.Fprintln(w.w, itemText(r.Item))
	}
	return err
}

func (w *Writer) writeTSV(r search.Result) error {
	_, err := fmt.Fprintf(w.w, "%g\t%s\t%s\n", r.Score, r.Key, itemText(r.Item))
	return err
}

func (w *Writer) writeJSON(r search.Result) error {
	doc, err := itemJSON(r.Item)
	if err != nil {
		return err
	}

	doc, err = sjson.Set(doc, "_score", r.Score)
	if err != nil {
		return fmt.Errorf("output: injecting _score: %w", err)
	}
	doc, err = sjson.Set(doc, "_key", r.Key)
	if err != nil {
		return fmt.Errorf("output: injecting _key: %w", err)
	}

	_, err = fmt.Fprintln(w.w, doc)
	return err
}

// itemText renders an item for line-oriented formats.
func itemText(item any) string {
	switch v := item.(type) {
	case string:
		return strings.TrimRight(v, "\n")
	case []byte:
		return strings.TrimRight(string(v), "\n")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// itemJSON renders an item as a raw JSON document. Raw JSON items pass
// through unchanged; structured items are marshaled and emitted at the
// document root so _score/_key injection lands beside the item's own
// fields. Only values that do not marshal to an object are wrapped as
// {"item": ...} so injection has an object to land on.
func itemJSON(item any) (string, error) {
	switch v := item.(type) {
	case string:
		if json.Valid([]byte(v)) && strings.HasPrefix(strings.TrimSpace(v), "{") {
			return v, nil
		}
	case []byte:
		if json.Valid(v) && strings.HasPrefix(strings.TrimSpace(string(v)), "{") {
			return string(v), nil
		}
	case json.RawMessage:
		if json.Valid(v) && strings.HasPrefix(strings.TrimSpace(string(v)), "{") {
			return string(v), nil
		}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("output: marshaling item: %w", err)
		}
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			return string(data), nil
		}
	}

	wrapped := map[string]any{"item": item}
	data, err := json.Marshal(wrapped)
	if err != nil {
		return "", fmt.Errorf("output: marshaling item: %w", err)
	}
	return string(data), nil
}
