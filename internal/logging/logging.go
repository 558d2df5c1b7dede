// Package logging builds the diagnostic logger shared by the store, the
// storage backends and the CLI. Diagnostics always go to stderr so that
// command output on stdout stays scriptable.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is attached to every log line.
const Prefix = "tasklist"

// Options holds logger configuration.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Level:     log.WarnLevel,
		Formatter: log.TextFormatter,
	}
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          Prefix,
	})
}

// FromConfig creates a logger from string configuration values, as loaded
// from config.toml or the environment. debug forces the debug level.
func FromConfig(w io.Writer, level, format string, debug bool) (*log.Logger, error) {
	opts := DefaultOptions()

	if level != "" {
		lvl, err := ParseLevel(level)
		if err != nil {
			return nil, err
		}
		opts.Level = lvl
	}
	if format != "" {
		f, err := ParseFormatter(format)
		if err != nil {
			return nil, err
		}
		opts.Formatter = f
	}
	if debug {
		opts.Level = log.DebugLevel
		opts.ReportTimestamp = true
	}

	return New(w, opts), nil
}

// ParseLevel parses a level name.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return 0, fmt.Errorf("invalid log level: %s", level)
}

// ParseFormatter parses a formatter name.
func ParseFormatter(format string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return 0, fmt.Errorf("invalid log format: %s", format)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
