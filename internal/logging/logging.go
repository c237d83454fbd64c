// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
)

// Options selects where log records go
type Options struct {
	// File receives every record at Level. Empty disables file logging.
	File string
	// Level is one of debug, info, warn or error
	Level string
	// Stderr also writes records to standard error
	Stderr bool
	// Extra receives records in addition to the other sinks
	Extra io.Writer
}

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds a logger fanning out to the configured sinks and installs it
// as the slog default. The returned closer releases the log file.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	level := ParseLevel(opts.Level)
	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		closer = f
		handlers = append(handlers, newHandler(f, level, true))
	}

	if opts.Stderr {
		handlers = append(handlers, newHandler(os.Stderr, level, false))
	}

	if opts.Extra != nil {
		handlers = append(handlers, newHandler(opts.Extra, level, true))
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.DiscardHandler
	case 1:
		handler = handlers[0]
	default:
		handler = slogmulti.Fanout(handlers...)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closer, nil
}

func newHandler(w io.Writer, level slog.Level, plain bool) slog.Handler {
	return console.NewHandler(w, &console.HandlerOptions{
		AddSource: level == slog.LevelDebug,
		Level:     level,
		NoColor:   plain,
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
