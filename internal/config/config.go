// Package config loads winnow configuration from TOML files with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Errors reported during validation.
var (
	// ErrInvalidWeight is returned for a configured key weight that is
	// not strictly positive.
	ErrInvalidWeight = errors.New("config: key weight must be positive")

	// ErrInvalidLimit is returned for a negative result limit.
	ErrInvalidLimit = errors.New("config: limit must not be negative")
)

// Config is the full application configuration.
type Config struct {
	// Keys are the searchable fields.
	Keys []Key `toml:"keys"`

	// Search tunes the ranking pipeline.
	Search Search `toml:"search"`

	// Filter restricts which items are considered.
	Filter Filter `toml:"filter"`

	// Output selects the filter-mode encoding.
	Output Output `toml:"output"`

	// Logging controls the diagnostic log.
	Logging Logging `toml:"logging"`

	// Script points at an optional Lua field-function file.
	Script Script `toml:"script"`

	// Watch reloads the items file when it changes (interactive mode).
	Watch bool `toml:"watch"`
}

// Key is one searchable field: a path the accessor understands plus a
// strictly positive weight.
type Key struct {
	Path   string  `toml:"path"`
	Weight float64 `toml:"weight"`
}

// Search settings.
type Search struct {
	// Limit caps the number of results. 0 means unlimited.
	Limit int `toml:"limit"`

	// CacheSize is the number of cached queries for interactive use.
	CacheSize int `toml:"cache_size"`

	// Format forces the item source format: "auto", "lines", or "json".
	Format string `toml:"format"`
}

// Filter settings; see the search package for glob semantics.
type Filter struct {
	Path    string `toml:"path"`
	Include string `toml:"include"`
	Exclude string `toml:"exclude"`
}

// Output settings.
type Output struct {
	// Format is "text", "tsv", or "json".
	Format string `toml:"format"`

	// Scores adds the score column to text output.
	Scores bool `toml:"scores"`
}

// Logging settings.
type Logging struct {
	// Level is debug, info, warn, or error.
	Level string `toml:"level"`

	// File receives log output; empty means stderr.
	File string `toml:"file"`
}

// Script settings.
type Script struct {
	// Path is the Lua file defining field functions.
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Keys: []Key{{Path: "name", Weight: 1}},
		Search: Search{
			Limit:     0,
			CacheSize: 100,
			Format:    "auto",
		},
		Output: Output{
			Format: "text",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads configuration from path, applies environment overrides, and
// validates. A missing file is not an error; defaults apply. An empty
// path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ParseError{
				Path:    path,
				Message: err.Error(),
				Err:     err,
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the pipeline relies on.
func (c *Config) Validate() error {
	for _, k := range c.Keys {
		if k.Weight <= 0 {
			return fmt.Errorf("%w: key %q has weight %v", ErrInvalidWeight, k.Path, k.Weight)
		}
	}
	if c.Search.Limit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, c.Search.Limit)
	}

	switch c.Search.Format {
	case "", "auto", "lines", "json":
	default:
		return fmt.Errorf("config: unknown source format %q", c.Search.Format)
	}

	switch c.Output.Format {
	case "", "text", "tsv", "json":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output.Format)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logging.Level)
	}

	return nil
}

// ParseError describes a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
