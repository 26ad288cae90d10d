package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/winnow/internal/config"
	"github.com/dshills/winnow/internal/search"
)

// Options carries command-line settings into the application. Zero
// values mean "not set"; set values override the configuration file.
type Options struct {
	// ConfigPath locates the TOML configuration file.
	ConfigPath string

	// ItemsPath is the candidate items file. Empty means stdin.
	ItemsPath string

	// Query switches to one-shot filter mode when non-empty.
	Query string

	// Keys are -key flag values, "path" or "path=weight". When present
	// they replace the configured keys entirely.
	Keys []string

	// Limit caps results. Negative means "not set".
	Limit int

	// SourceFormat overrides the items format: auto, lines, or json.
	SourceFormat string

	// OutputFormat overrides the filter-mode encoding.
	OutputFormat string

	// Scores adds the score column to text output.
	Scores bool

	// Watch reloads the items file on change (interactive mode).
	Watch bool

	// LogLevel and LogFile override the logging configuration.
	LogLevel string
	LogFile  string

	// ScriptPath overrides the Lua field-function file.
	ScriptPath string

	// Stdin and Stdout default to the process streams; tests replace
	// them.
	Stdin  io.Reader
	Stdout io.Writer
}

// merge overlays the set options onto cfg. Flags beat file and
// environment.
func (o *Options) merge(cfg *config.Config) error {
	if len(o.Keys) > 0 {
		keys, err := parseKeySpecs(o.Keys)
		if err != nil {
			return err
		}
		cfg.Keys = keys
	}
	if o.Limit >= 0 {
		cfg.Search.Limit = o.Limit
	}
	if o.SourceFormat != "" {
		cfg.Search.Format = o.SourceFormat
	}
	if o.OutputFormat != "" {
		cfg.Output.Format = o.OutputFormat
	}
	if o.Scores {
		cfg.Output.Scores = true
	}
	if o.Watch {
		cfg.Watch = true
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.Logging.File = o.LogFile
	}
	if o.ScriptPath != "" {
		cfg.Script.Path = o.ScriptPath
	}
	return cfg.Validate()
}

// parseKeySpecs converts "path" or "path=weight" flag values into
// configured keys. A bare path gets weight 1.
func parseKeySpecs(specs []string) ([]config.Key, error) {
	keys := make([]config.Key, 0, len(specs))
	for _, spec := range specs {
		path, weightStr, found := strings.Cut(spec, "=")
		if path == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadKeySpec, spec)
		}

		weight := 1.0
		if found {
			w, err := strconv.ParseFloat(weightStr, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrBadKeySpec, spec, err)
			}
			weight = w
		}

		keys = append(keys, config.Key{Path: path, Weight: weight})
	}
	return keys, nil
}

// searchKeys converts configured keys to the search package's type.
func searchKeys(keys []config.Key) []search.Key {
	out := make([]search.Key, len(keys))
	for i, k := range keys {
		out[i] = search.Key{Path: k.Path, Weight: k.Weight}
	}
	return out
}
