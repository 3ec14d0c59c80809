package config

import (
	"io"
	"log/slog"
)

// NewHandler is exported for testing
func NewHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	return newHandler(w, format, level)
}
