package log

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// NewContext returns a context carrying the given logger, typically one
// already enriched with the request ID.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in the context, or a logger
// around slog.Default when none was stored.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: ComponentApp,
	}
}
