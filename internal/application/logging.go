package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/logging"
)

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, base, "service", serviceName, operation, attrs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound), errors.Is(err, calendar.ErrEventNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAdminDisabled):
		return "admin_disabled"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_kind"
	case errors.Is(err, calendar.ErrInvalidCategory):
		return "invalid_category"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var fErr *calendar.FormError
	if errors.As(err, &fErr) {
		return "validation"
	}

	return "unexpected"
}
