package main

import (
	"io"
	"log/slog"

	"github.com/jonathan/sng-admin/internal/config"
)

// newLogger builds the process logger: JSON in production or when asked
// for, text otherwise.
func newLogger(w io.Writer, cfg config.LogConfig, production bool) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" || (cfg.Format == "" && production) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
