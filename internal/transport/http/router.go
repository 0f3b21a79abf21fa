// Package httptransport assembles the HTTP surface: shared middleware,
// probes, and the versioned API with its public and authenticated halves.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	alerthandler "carecompliance/internal/alerts/handler"
	checklisthandler "carecompliance/internal/checklist/handler"
	dochandler "carecompliance/internal/documents/handler"
	overviewhandler "carecompliance/internal/overview/handler"
	"carecompliance/internal/platform/metrics"
	"carecompliance/internal/ratelimit"
	"carecompliance/pkg/platform/httputil"
	"carecompliance/pkg/platform/middleware/auth"
	"carecompliance/pkg/platform/middleware/device"
	"carecompliance/pkg/platform/middleware/request"
	"carecompliance/pkg/platform/middleware/requesttime"
	"carecompliance/pkg/requestcontext"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handlers are the feature handlers mounted under /api/v1.
type Handlers struct {
	Documents *dochandler.Handler
	Alerts    *alerthandler.Handler
	Checklist *checklisthandler.Handler
	Overview  *overviewhandler.Handler
}

// Config carries the cross-cutting router dependencies.
type Config struct {
	Validator auth.TokenValidator
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Checks    map[string]HealthCheck
	// PublicLimiter throttles the token-only guardian routes. Nil disables it.
	PublicLimiter *ratelimit.Limiter
}

func NewRouter(h Handlers, cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(device.Middleware)
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(cfg.Checks, cfg.Logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Guardians reach these through the emailed token only.
		r.Group(func(r chi.Router) {
			if cfg.PublicLimiter != nil {
				r.Use(chimw.RealIP)
				r.Use(ratelimit.Middleware(cfg.PublicLimiter, cfg.Logger))
			}
			h.Checklist.RegisterPublic(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(cfg.Validator, cfg.Logger))
			h.Documents.Register(r)
			h.Alerts.Register(r)
			h.Checklist.Register(r)
			h.Overview.Register(r)
		})
	})
	return r
}

func readiness(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed",
					"request_id", requestcontext.RequestID(ctx),
					"dependency", name,
					"error", err,
				)
				status[name] = "unavailable"
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, status)
	}
}
