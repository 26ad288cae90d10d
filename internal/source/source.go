package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// Errors reported while loading items.
var (
	// ErrTooManyItems is returned when a source exceeds its item limit.
	ErrTooManyItems = errors.New("source: too many items")

	// ErrInvalidJSON is returned for a document that is neither a JSON
	// array nor NDJSON.
	ErrInvalidJSON = errors.New("source: invalid JSON document")
)

// Default guards against unbounded inputs.
const (
	// DefaultMaxItems caps the number of items loaded from one source.
	DefaultMaxItems = 1_000_000

	// DefaultMaxLineLen caps a single line in bytes.
	DefaultMaxLineLen = 1024 * 1024
)

// Source loads a collection of candidate items.
type Source interface {
	// Load reads the collection. Each call re-reads the backing data.
	Load() ([]any, error)

	// Name identifies the source for logging.
	Name() string
}

// LineSource yields one scalar string item per non-empty line.
type LineSource struct {
	name       string
	open       func() (io.ReadCloser, error)
	maxItems   int
	maxLineLen int
}

// LineSourceOption configures a LineSource or JSONSource.
type LineSourceOption func(*LineSource)

// WithMaxItems caps the number of items loaded.
func WithMaxItems(n int) LineSourceOption {
	return func(s *LineSource) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithMaxLineLen caps the byte length of one line.
func WithMaxLineLen(n int) LineSourceOption {
	return func(s *LineSource) {
		if n > 0 {
			s.maxLineLen = n
		}
	}
}

// NewLineSource reads lines from the file at path.
func NewLineSource(path string, opts ...LineSourceOption) *LineSource {
	s := &LineSource{
		name: path,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
		maxItems:   DefaultMaxItems,
		maxLineLen: DefaultMaxLineLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewLineReaderSource reads lines from r. The reader is consumed once, so
// Load is single-shot; name is used for logging only.
func NewLineReaderSource(name string, r io.Reader, opts ...LineSourceOption) *LineSource {
	s := &LineSource{
		name: name,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
		maxItems:   DefaultMaxItems,
		maxLineLen: DefaultMaxLineLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Source.
func (s *LineSource) Name() string { return s.name }

// Load implements Source.
func (s *LineSource) Load() ([]any, error) {
	r, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.name, err)
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), s.maxLineLen)

	var items []any
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if len(items) >= s.maxItems {
			return nil, fmt.Errorf("%w: limit %d in %s", ErrTooManyItems, s.maxItems, s.name)
		}
		items = append(items, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.name, err)
	}

	return items, nil
}

// JSONSource yields raw JSON items from a JSON array document or an
// NDJSON stream. Items are kept as raw JSON strings for the gjson-backed
// accessor; the original document bytes are never re-encoded.
type JSONSource struct {
	lines *LineSource
}

// NewJSONSource reads JSON items from the file at path.
func NewJSONSource(path string, opts ...LineSourceOption) *JSONSource {
	return &JSONSource{lines: NewLineSource(path, opts...)}
}

// NewJSONReaderSource reads JSON items from r. Like NewLineReaderSource,
// Load is single-shot.
func NewJSONReaderSource(name string, r io.Reader, opts ...LineSourceOption) *JSONSource {
	return &JSONSource{lines: NewLineReaderSource(name, r, opts...)}
}

// Name implements Source.
func (s *JSONSource) Name() string { return s.lines.name }

// Load implements Source.
func (s *JSONSource) Load() ([]any, error) {
	r, err := s.lines.open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.lines.name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.lines.name, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		return s.loadArray(trimmed)
	}
	return s.loadNDJSON(trimmed)
}

// loadArray splits a JSON array document into raw element strings.
func (s *JSONSource) loadArray(data []byte) ([]any, error) {
	doc := string(data)
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, s.lines.name)
	}

	parsed := gjson.Parse(doc)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: top-level value is not an array in %s", ErrInvalidJSON, s.lines.name)
	}

	elements := parsed.Array()
	if len(elements) > s.lines.maxItems {
		return nil, fmt.Errorf("%w: limit %d in %s", ErrTooManyItems, s.lines.maxItems, s.lines.name)
	}

	items := make([]any, len(elements))
	for i, el := range elements {
		items[i] = el.Raw
	}
	return items, nil
}

// loadNDJSON treats each non-empty line as one raw JSON item.
func (s *JSONSource) loadNDJSON(data []byte) ([]any, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), s.lines.maxLineLen)

	var items []any
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			return nil, fmt.Errorf("%w: line %d in %s", ErrInvalidJSON, lineNo, s.lines.name)
		}
		if len(items) >= s.lines.maxItems {
			return nil, fmt.Errorf("%w: limit %d in %s", ErrTooManyItems, s.lines.maxItems, s.lines.name)
		}
		items = append(items, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.lines.name, err)
	}

	return items, nil
}
