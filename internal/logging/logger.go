// Package logging builds the slog loggers used by the CLI and the lab.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to w. verbose enables debug records.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard drops every record. The TUI uses it when no log file is given,
// since stderr is covered by the alt-screen.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OpenFile appends to the log at path. The caller closes the returned file.
func OpenFile(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, verbose), f, nil
}

// OrDefault returns l, or a discarding logger when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
