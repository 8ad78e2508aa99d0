// Package logging defines a minimal structured-logging interface used across
// the project. Implementations wrap slog (default) and zap.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "backend probed", "running", st.Running, "port", st.Port)
type Logger interface {
	// Debug logs per-tick chatter that is normally filtered out.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// Supported values for New.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatZap  = "zap"

	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// New builds a Logger for the given format and minimum level writing to w.
// Unknown formats fall back to text and unknown levels to info. A nil
// writer means stdout.
func New(format, level string, w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}
	lvl := ParseLevel(level)
	if format == FormatZap {
		return NewZapLogger(newZap(w, zapLevel(lvl)))
	}
	return NewSlogLogger(newSlog(format, lvl, w))
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) slog.Level {
	switch s {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.DiscardHandler))
}
