package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/logging"
	"github.com/example/pocket-calendar/internal/recurrence"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func opLogger(ctx context.Context, base *slog.Logger, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"component", "store", "operation", operation}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// errorKind maps sentinel and validation errors to a stable logging label.
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, calendar.ErrNotFound):
		return "not_found"
	case errors.Is(err, recurrence.ErrInvalidInterval), errors.Is(err, recurrence.ErrInvalidFrequency):
		return "invalid_rule"
	}

	var vErr *calendar.ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
