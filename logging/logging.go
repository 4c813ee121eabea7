// Package logging sets up zerolog for framereview. The TUI owns the
// terminal, so logs go to a per-run file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger writing uncoloured console lines to out.
func New(out io.Writer, level string) zerolog.Logger {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
	w := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// FilePath is the log file for a run started at start.
func FilePath(logsDir, name string, start time.Time) string {
	return filepath.Join(logsDir, fmt.Sprintf("%s.%s.log", name, start.Format("20060102_150405")))
}

// OpenFile creates logsDir if needed and opens the run's log file. An
// existing file of the same name is moved aside to .old first.
func OpenFile(logsDir, name string, start time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	path := FilePath(logsDir, name, start)
	if _, err := os.Stat(path); err == nil {
		os.Rename(path, path+".old")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Setup opens the run's log file and returns a logger on it with a closer.
// If the file cannot be opened the logger falls back to stderr.
func Setup(logsDir, level, name string) (zerolog.Logger, func() error, error) {
	f, err := OpenFile(logsDir, name, time.Now())
	if err != nil {
		return New(os.Stderr, level), func() error { return nil }, err
	}
	logger := New(f, level)
	logger.Info().Str("path", f.Name()).Msg("Logging to file")
	return logger, f.Close, nil
}
