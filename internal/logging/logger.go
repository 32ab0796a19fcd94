// Package logging configures structured logging using log/slog.
//
// Logs go to stderr because stdout carries the emitted documents and
// query fragments.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog logger based on level and format and
// returns it. A nil w means stderr.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(w io.Writer, level, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := New(w, level, format)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w without touching the global default.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// ValidFormat reports whether format names a supported handler.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", "text", "json":
		return true
	}
	return false
}
