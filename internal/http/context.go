package http

import (
	"context"
	"log/slog"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/logging"
)

type contextKey string

const (
	principalContextKey  contextKey = "principal"
	eventIDContextKey    contextKey = "event_id"
	resourceIDContextKey contextKey = "resource_id"
	kindContextKey       contextKey = "resource_kind"
)

// ContextWithPrincipal returns a derived context containing the resolved principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// PrincipalOrReadOnly returns the context principal, or the read-only principal
// when none was attached.
func PrincipalOrReadOnly(ctx context.Context) application.Principal {
	if principal, ok := PrincipalFromContext(ctx); ok {
		return principal
	}
	return application.ReadOnlyPrincipal()
}

// ContextWithEventID injects the event identifier resolved from the request path.
func ContextWithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDContextKey, eventID)
}

// EventIDFromContext extracts an event identifier previously associated with the context.
func EventIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(eventIDContextKey).(string)
	return id, ok
}

// ContextWithResource injects the resource kind and optional identifier resolved from the path.
func ContextWithResource(ctx context.Context, kind application.Kind, resourceID string) context.Context {
	ctx = context.WithValue(ctx, kindContextKey, kind)
	if resourceID != "" {
		ctx = context.WithValue(ctx, resourceIDContextKey, resourceID)
	}
	return ctx
}

// ResourceFromContext extracts the resource kind and identifier.
func ResourceFromContext(ctx context.Context) (application.Kind, string) {
	kind, _ := ctx.Value(kindContextKey).(application.Kind)
	id, _ := ctx.Value(resourceIDContextKey).(string)
	return kind, id
}

// ContextWithLogger attaches a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
