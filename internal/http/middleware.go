package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/campus-coordinator/internal/application"
	"github.com/example/campus-coordinator/internal/logging"
	"github.com/example/campus-coordinator/internal/workflow"
)

// Identity headers asserted by the gateway in front of the service.
const (
	HeaderActorRole       = "X-Actor-Role"
	HeaderActorID         = "X-Actor-Id"
	HeaderActorDepartment = "X-Actor-Department"
	HeaderActorSchool     = "X-Actor-School"
)

// RequireActor resolves the acting user from gateway identity headers and
// attaches it to the request context. Requests without a valid identity are
// rejected.
func RequireActor(logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleValue := strings.TrimSpace(r.Header.Get(HeaderActorRole))
			userID := strings.TrimSpace(r.Header.Get(HeaderActorID))
			if roleValue == "" || userID == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingActor)
				return
			}

			role, err := workflow.ParseRole(roleValue)
			if err != nil {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, err)
				return
			}

			actor := application.Actor{
				Role:       role,
				UserID:     userID,
				Department: strings.TrimSpace(r.Header.Get(HeaderActorDepartment)),
				School:     strings.TrimSpace(r.Header.Get(HeaderActorSchool)),
			}

			ctx := ContextWithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a per-request logger to the context and records
// request start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
