package config

import (
	"os"
	"strconv"
)

// Environment variables override file settings. Only scalar settings are
// mapped; key weights belong in the file or on the command line.
const (
	envLogLevel     = "WINNOW_LOG_LEVEL"
	envLogFile      = "WINNOW_LOG_FILE"
	envLimit        = "WINNOW_LIMIT"
	envOutputFormat = "WINNOW_OUTPUT"
	envSourceFormat = "WINNOW_FORMAT"
	envScriptPath   = "WINNOW_SCRIPT"
	envWatch        = "WINNOW_WATCH"
)

// applyEnv overlays WINNOW_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(envLogLevel); ok {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv(envLogFile); ok {
		cfg.Logging.File = v
	}
	if v, ok := os.LookupEnv(envLimit); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Limit = n
		}
	}
	if v, ok := os.LookupEnv(envOutputFormat); ok {
		cfg.Output.Format = v
	}
	if v, ok := os.LookupEnv(envSourceFormat); ok {
		cfg.Search.Format = v
	}
	if v, ok := os.LookupEnv(envScriptPath); ok {
		cfg.Script.Path = v
	}
	if v, ok := os.LookupEnv(envWatch); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Watch = b
		}
	}
}
