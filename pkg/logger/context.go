package logger

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// With derives a logger carrying fields and stores it in the context, so
// every later From on that context logs the fields too.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, loggerKey{}, From(ctx).With(fields...))
}

// From returns the request-scoped logger, or the process logger.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return L()
}
