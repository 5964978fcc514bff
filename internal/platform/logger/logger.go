// Package logger builds the structured loggers used by every binary.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New creates and returns a new slog.Logger instance.
// The handler is set to JSON for machine-readable logs.
func New(serviceName, level string) *slog.Logger {
	log := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(level)}),
	).With(
		slog.String("service", serviceName),
	)

	return log
}

// ParseLevel maps debug, info, warn and error to a slog level.
// Anything unrecognised falls back to info.
func ParseLevel(level string) slog.Level {
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
