// Package httptransport assembles the HTTP surface: shared middleware, the
// poll routes behind anonymous identity, health and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pollcast/internal/platform/middleware"
	dErrors "pollcast/pkg/domain-errors"
	"pollcast/pkg/platform/httputil"
	"pollcast/pkg/platform/middleware/requestlog"
	"pollcast/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// RouteRegistrar mounts a module's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// Deps are the pieces the router composes.
type Deps struct {
	Logger   *slog.Logger
	Identity func(http.Handler) http.Handler
	Polls    RouteRegistrar
	Metrics  http.Handler
	// Health reports whether the shared store is reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter wires all public endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(requestlog.RequestID)
	r.Use(requestlog.Logger(d.Logger))
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthHandler(d.Health))
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		if d.Identity != nil {
			r.Use(d.Identity)
		}
		d.Polls.Register(r)
	})
	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"error":  string(dErrors.CodeInternal),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
