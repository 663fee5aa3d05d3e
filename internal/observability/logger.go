// Package observability provides the logger and Prometheus metrics shared by
// the CLI, the TUI, and the daemon.
package observability

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger for interactive commands. Only warnings
// reach the terminal unless verbose is set.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewServiceLogger returns a text logger for the daemon, which logs at info.
func NewServiceLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
