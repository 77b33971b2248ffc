package http

import (
	"context"
	"log/slog"

	"github.com/example/conference-central/internal/logging"
)

// ContextWithLogger returns a derived context carrying a request scoped logger.
// The logger is stored through the shared logging package so that the
// application layer picks it up as well.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request scoped logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
