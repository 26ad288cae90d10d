package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/winnow/internal/config"
	"github.com/dshills/winnow/internal/output"
	"github.com/dshills/winnow/internal/picker"
	"github.com/dshills/winnow/internal/script"
	"github.com/dshills/winnow/internal/search"
	"github.com/dshills/winnow/internal/source"
)

// App wires configuration, item source, accessor, and searcher together
// and dispatches to filter or interactive mode.
type App struct {
	cfg    config.Config
	opts   Options
	logger *Logger
	state  *script.State
}

// New loads configuration, overlays command-line options, and sets up
// logging.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := opts.merge(&cfg); err != nil {
		return nil, err
	}

	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		opts:   opts,
		logger: logger,
	}, nil
}

// buildLogger constructs the application logger from config. Interactive
// mode owns the terminal, so the default sink is stderr or a file, never
// stdout.
func buildLogger(cfg config.Logging) (*Logger, error) {
	lc := DefaultLoggerConfig()
	lc.Level = ParseLogLevel(cfg.Level)

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		lc.Output = f
	}

	logger := NewLogger(lc)
	SetLogger(logger)
	return logger, nil
}

// Run executes one invocation. A non-empty query runs filter mode; an
// empty query opens the interactive picker.
func (a *App) Run() error {
	defer func() {
		if a.state != nil {
			a.state.Close()
		}
	}()

	searcher, err := a.buildSearcher()
	if err != nil {
		return err
	}

	src, err := a.buildSource()
	if err != nil {
		return err
	}

	items, err := src.Load()
	if err != nil {
		return fmt.Errorf("loading items from %s: %w", src.Name(), err)
	}
	a.logger.WithField("source", src.Name()).
		WithField("items", len(items)).
		Debug("items loaded")

	if a.opts.Query != "" {
		return a.runFilter(searcher, items)
	}
	return a.runInteractive(searcher, src, items)
}

// runFilter performs a one-shot search and writes ranked results.
func (a *App) runFilter(searcher *search.Searcher, items []any) error {
	results := searcher.Search(a.opts.Query, items)
	a.logger.WithField("query", a.opts.Query).
		WithField("results", len(results)).
		Debug("filter complete")

	writer, err := a.buildWriter(a.opts.Stdout)
	if err != nil {
		return err
	}
	return writer.Write(results)
}

// runInteractive opens the picker and prints the selection.
func (a *App) runInteractive(searcher *search.Searcher, src source.Source, items []any) error {
	if len(items) == 0 {
		return ErrNoItems
	}

	cache := search.NewCache(a.cfg.Search.CacheSize)
	stream := search.NewStreamSearcher(searcher, cache)
	defer stream.Cancel()

	popts := picker.Options{
		Stream: stream,
		Items:  items,
		Line:   a.lineFunc(),
	}

	if a.cfg.Watch && a.opts.ItemsPath != "" {
		watcher, err := source.NewWatcher(a.opts.ItemsPath)
		if err != nil {
			return fmt.Errorf("watching %s: %w", a.opts.ItemsPath, err)
		}
		defer watcher.Close()

		// The picker owns the screen, so watch failures go to the log.
		go func() {
			log := a.logger.WithComponent("watcher")
			for err := range watcher.Errors() {
				log.Warn("watch error: %v", err)
			}
		}()

		popts.Reloads = watcher.Reloads()
		popts.Reload = func() ([]any, error) {
			stream.InvalidateCache()
			return src.Load()
		}
	}

	p, err := picker.New(popts)
	if err != nil {
		return err
	}

	selection, err := p.Run()
	if err != nil {
		return err
	}
	a.logger.WithField("query", stream.LastQuery()).
		WithField("key", selection.Key).
		Debug("selection made")

	writer, err := a.buildWriter(a.opts.Stdout)
	if err != nil {
		return err
	}
	return writer.Write([]search.Result{selection})
}

// buildSearcher assembles the accessor chain and the searcher.
func (a *App) buildSearcher() (*search.Searcher, error) {
	accessor, err := a.buildAccessor()
	if err != nil {
		return nil, err
	}

	var filter *search.Filter
	if a.cfg.Filter.Path != "" {
		filter = &search.Filter{
			Path:    a.cfg.Filter.Path,
			Include: a.cfg.Filter.Include,
			Exclude: a.cfg.Filter.Exclude,
		}
	}

	return search.NewSearcher(search.Options{
		Keys:     searchKeys(a.cfg.Keys),
		Accessor: accessor,
		Limit:    a.cfg.Search.Limit,
		Filter:   filter,
	})
}

// buildAccessor picks the base accessor for the item shape and wraps it
// with the Lua accessor when a script is configured.
func (a *App) buildAccessor() (search.Accessor, error) {
	var base search.Accessor = search.MapAccessor{}
	if a.sourceFormat() == "json" {
		base = search.JSONAccessor{}
	}

	if a.cfg.Script.Path == "" {
		return base, nil
	}

	state := script.NewState()
	if err := state.DoFile(a.cfg.Script.Path); err != nil {
		state.Close()
		return nil, fmt.Errorf("loading script %s: %w", a.cfg.Script.Path, err)
	}

	// Catch missing field functions up front instead of silently scoring
	// nothing for that key.
	for _, k := range a.cfg.Keys {
		if fn, ok := strings.CutPrefix(k.Path, script.PathPrefix); ok && !state.HasFunction(fn) {
			state.Close()
			return nil, fmt.Errorf("%w: script %s does not define %q", ErrMissingFunction, a.cfg.Script.Path, fn)
		}
	}
	a.state = state
	a.logger.WithField("script", a.cfg.Script.Path).Debug("script loaded")

	return script.NewAccessor(state, base), nil
}

// buildSource selects the item source from the path and format.
func (a *App) buildSource() (source.Source, error) {
	format := a.sourceFormat()

	if a.opts.ItemsPath == "" {
		if format == "json" {
			return source.NewJSONReaderSource("stdin", a.opts.Stdin), nil
		}
		return source.NewLineReaderSource("stdin", a.opts.Stdin), nil
	}

	if format == "json" {
		return source.NewJSONSource(a.opts.ItemsPath), nil
	}
	return source.NewLineSource(a.opts.ItemsPath), nil
}

// sourceFormat resolves "auto" against the items path extension. Stdin
// with no explicit format is treated as lines.
func (a *App) sourceFormat() string {
	format := a.cfg.Search.Format
	if format != "" && format != "auto" {
		return format
	}

	switch strings.ToLower(filepath.Ext(a.opts.ItemsPath)) {
	case ".json", ".ndjson", ".jsonl":
		return "json"
	default:
		return "lines"
	}
}

// buildWriter constructs the result writer from the output config.
func (a *App) buildWriter(w io.Writer) (*output.Writer, error) {
	format, err := output.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	var opts []output.Option
	if a.cfg.Output.Scores {
		opts = append(opts, output.WithScores())
	}
	return output.NewWriter(w, format, opts...), nil
}

// lineFunc renders picker rows by resolving the winning key through the
// accessor, so interactive display matches what was scored.
func (a *App) lineFunc() picker.LineFunc {
	if len(a.cfg.Keys) == 0 {
		return nil
	}
	accessor := a.buildDisplayAccessor()
	primary := a.cfg.Keys[0].Path

	return func(r search.Result) (string, []int) {
		path := r.Key
		positions := r.Positions
		if path == "" {
			// Empty-query rows have no winning key; show the primary
			// field without highlights.
			path = primary
			positions = nil
		}

		value, ok := accessor.Value(r.Item, path)
		if !ok {
			return fmt.Sprintf("%v", r.Item), nil
		}
		switch v := value.(type) {
		case string:
			return v, positions
		case []string:
			// Array fields matched one element; highlights would not
			// line up with the joined text.
			return strings.Join(v, ", "), nil
		case []any:
			parts := make([]string, 0, len(v))
			for _, el := range v {
				if s, ok := el.(string); ok {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, ", "), nil
		default:
			return fmt.Sprintf("%v", r.Item), nil
		}
	}
}

// buildDisplayAccessor mirrors the search accessor chain for rendering.
// The scriptable state is shared with the searcher, which is safe: the
// picker searches and renders from a single goroutine.
func (a *App) buildDisplayAccessor() search.Accessor {
	var base search.Accessor = search.MapAccessor{}
	if a.sourceFormat() == "json" {
		base = search.JSONAccessor{}
	}
	if a.state != nil {
		return script.NewAccessor(a.state, base)
	}
	return base
}
