package config

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger at Info, or at Debug when debug is set.
func NewLogger(debug bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
