// Package logging builds the process-wide structured logger. Every binary
// logs JSON to stdout tagged with its service name; package-level slog
// calls inherit the same handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger returns a JSON logger carrying the service attribute and
// installs it as the slog default, so package-level warnings (expansion
// degradation, breaker state changes) share the handler.
func NewJSONLogger(service, level string) *slog.Logger {
	return newJSONLogger(os.Stdout, service, level, true)
}

func newJSONLogger(w io.Writer, service, level string, install bool) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	logger := slog.New(handler).With("service", service)
	if install {
		slog.SetDefault(logger)
	}
	return logger
}

func parseLevel(level string) slog.Level {
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
