package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/logging"
)

// Authenticator resolves admin credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (application.Principal, error)
}

// ResolvePrincipal attaches the admin principal to requests carrying valid HTTP
// Basic credentials and the read-only principal to every other request.
func ResolvePrincipal(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logging.OrDefault(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := application.ReadOnlyPrincipal()

			if username, password, ok := r.BasicAuth(); ok && auth != nil {
				resolved, err := auth.Authenticate(r.Context(), username, password)
				switch {
				case err == nil:
					principal = resolved
				case errors.Is(err, application.ErrInvalidCredentials), errors.Is(err, application.ErrAdminDisabled):
					logging.Scoped(r.Context(), logger, "handler", "ResolvePrincipal", "").
						InfoContext(r.Context(), "falling back to read-only principal", "error_kind", application.ErrorKind(err))
				default:
					logging.Scoped(r.Context(), logger, "handler", "ResolvePrincipal", "").
						ErrorContext(r.Context(), "admin authentication error", "error", err)
				}
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = logging.OrDefault(base)
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(rec, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", rec.status, "duration", time.Since(start))
		})
	}
}
