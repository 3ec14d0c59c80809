package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/caseguard/riskmatrix/pkg/utils/logging"
)

// Close closes an io.Closer and logs any error.
// It handles nil closers gracefully.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Write writes a response body and logs a failed write; the status line is already sent then.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write response", slog.Any("error", err), slog.Int("size", len(data)))
	}
}
