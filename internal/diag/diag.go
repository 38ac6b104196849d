// Package diag provides structured logging and colorized terminal
// diagnostics for the generator, grounded on the example corpus's
// log/slog-based handler construction (go.jacobcolvin.com/x's log
// package: CreateHandler/GetLevel/GetFormat) plus the teacher's own
// plain-text stderr diagnostics.
package diag

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Format is the diagnostics output format.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

// Logger is the generator's single diagnostics sink.
type Logger struct {
	slog    *slog.Logger
	colored bool
}

// New builds a Logger writing to stderr at the given level ("debug",
// "info", "warn", "error") and format ("text", "json", "logfmt").
func New(level, format string) *Logger {
	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}

	var handler slog.Handler
	switch Format(strings.ToLower(format)) {
	case FormatJSON:
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	case FormatLogfmt:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}

	return &Logger{slog: slog.New(handler), colored: !color.NoColor}
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

func (d *Logger) Debugf(format string, args ...any) { d.slog.Debug(fmt.Sprintf(format, args...)) }
func (d *Logger) Infof(format string, args ...any)  { d.slog.Info(fmt.Sprintf(format, args...)) }
func (d *Logger) Warnf(format string, args ...any)  { d.slog.Warn(fmt.Sprintf(format, args...)) }

// Errorf logs an error, rendered in red when the terminal supports color.
func (d *Logger) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if d.colored {
		msg = color.RedString(msg)
	}
	d.slog.Error(msg)
}
