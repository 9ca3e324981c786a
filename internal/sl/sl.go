// Package sl holds small helpers for structured logging with log/slog.
package sl

import (
	"io"
	"log/slog"
)

// Err wraps an error into a slog attribute so call sites stay terse.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Discard returns a logger that drops everything. Components take a logger
// as a dependency; tests pass this one.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
