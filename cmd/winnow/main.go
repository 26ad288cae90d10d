// Package main is the entry point for the winnow fuzzy filter.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/winnow/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	// No items file and a terminal on stdin means there is nothing to
	// filter. Piped stdin is fine even interactively; the picker drives
	// the terminal through /dev/tty.
	if opts.ItemsPath == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: no items; pass an items file or pipe input")
		return 2
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Handle signals so a killed interactive session does not leave the
	// terminal in raw mode; the picker restores it on its own exit paths.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	done := make(chan error, 1)
	go func() {
		done <- application.Run()
	}()

	select {
	case <-signals:
		return 130
	case err := <-done:
		if err != nil {
			if errors.Is(err, app.ErrAborted) {
				return 130
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	return 0
}

// keyFlags collects repeated -key values.
type keyFlags []string

func (k *keyFlags) String() string { return fmt.Sprint([]string(*k)) }

func (k *keyFlags) Set(v string) error {
	*k = append(*k, v)
	return nil
}

func parseFlags() app.Options {
	opts := app.Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
	var keys keyFlags
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Query, "query", "", "Run one-shot filter mode with this query")
	flag.StringVar(&opts.Query, "q", "", "Run one-shot filter mode with this query (shorthand)")
	flag.Var(&keys, "key", "Searchable field as path or path=weight (repeatable)")
	flag.Var(&keys, "k", "Searchable field as path or path=weight (repeatable, shorthand)")
	flag.IntVar(&opts.Limit, "limit", -1, "Maximum number of results (0 for unlimited)")
	flag.StringVar(&opts.SourceFormat, "format", "", "Items format: auto, lines, or json")
	flag.StringVar(&opts.OutputFormat, "output", "", "Output format: text, tsv, or json")
	flag.BoolVar(&opts.Scores, "scores", false, "Include scores in text output")
	flag.BoolVar(&opts.Watch, "watch", false, "Reload the items file when it changes")
	flag.StringVar(&opts.ScriptPath, "script", "", "Lua file defining computed fields")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Log file (default stderr)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Winnow - fuzzy filter and ranked search\n\n")
		fmt.Fprintf(os.Stderr, "Usage: winnow [options] [items-file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  winnow items.txt                      Interactive picker over lines\n")
		fmt.Fprintf(os.Stderr, "  winnow -q srv items.txt               Print lines matching 'srv', best first\n")
		fmt.Fprintf(os.Stderr, "  winnow -k name=2 -k tags items.json   Weighted search over JSON fields\n")
		fmt.Fprintf(os.Stderr, "  cat items.txt | winnow -q srv         Filter stdin\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("winnow %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.Keys = keys

	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: at most one items file, got %d\n", flag.NArg())
		os.Exit(2)
	}
	if flag.NArg() == 1 {
		opts.ItemsPath = flag.Arg(0)
	}

	return opts
}
