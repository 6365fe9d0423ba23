// Package logging builds the leveled logger used outside the task core.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Options holds configuration for the application logger.
type Options struct {
	Level           string
	Path            string
	Prefix          string
	ReportTimestamp bool
}

// DefaultOptions returns options that discard output at info level.
func DefaultOptions() Options {
	return Options{
		Level:           "info",
		Prefix:          "taskboard",
		ReportTimestamp: true,
	}
}

// New creates a logger writing to opts.Path. The terminal belongs to the
// UI, so an empty path discards everything. The returned closer must be
// called once the program exits.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = io.Discard
	var closer io.Closer = nopCloser{}
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       log.LogfmtFormatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
	return logger, closer, nil
}

// ParseLevel maps a level name to a log.Level. Empty means info.
func ParseLevel(level string) (log.Level, error) {
	if level == "" {
		return log.InfoLevel, nil
	}
	l, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log level %q: %w", level, err)
	}
	return l, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
