// Package logging builds the diagnostic logger shared by every dockers command.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// New returns a logger writing to w at the given level.
//
// Supported levels: debug, info, warn, error.
func New(w io.Writer, level string) (*log.Logger, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	return log.NewWithOptions(w, log.Options{
		Level:           parsed,
		Prefix:          "dockers",
		ReportTimestamp: true,
	}), nil
}

// Open returns a logger writing to the file at path, or to stderr when path is empty.
// The returned closer releases the file.
func Open(path, level string) (*log.Logger, io.Closer, error) {
	if path == "" {
		logger, err := New(os.Stderr, level)
		return logger, io.NopCloser(nil), err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger, err := New(f, level)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel maps a level name to a log.Level. An empty name means warn.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", LevelWarn, "warning":
		return log.WarnLevel, nil
	case LevelDebug:
		return log.DebugLevel, nil
	case LevelInfo:
		return log.InfoLevel, nil
	case LevelError:
		return log.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}
