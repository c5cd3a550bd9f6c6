// Package logger builds the structured loggers used across oploader.
package logger

import (
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Level parses a textual log level; unknown values fall back to info.
func Level(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// New creates a logger writing to w in the given format ("json" or text).
// Extra handlers receive every record as well.
func New(level, format string, w io.Writer, extra ...slog.Handler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	if len(extra) > 0 {
		handlers := append([]slog.Handler{handler}, extra...)
		handler = slogmulti.Fanout(handlers...)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
