// Package logging carries a request-scoped slog.Logger through contexts so
// the store and persistence layers can enrich log lines without plumbing a
// logger argument through every call.
package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger returns a derived context carrying the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts a logger previously attached to the context, or nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}
