// Package httptransport assembles the chi router from the platform middleware
// stack and the feature handlers.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quarters/internal/platform/metrics"
	"quarters/internal/platform/middleware"
)

// Registrar is anything that can mount routes on the API router. Feature
// handlers implement it.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the full HTTP surface: operational endpoints unauthenticated
// at the top, every API route behind RequireAuth.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, validator middleware.JWTValidator, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.LatencyMiddleware(m))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.RequireAuth(validator, logger))
		api.Use(middleware.ContentTypeJSON)
		for _, h := range handlers {
			h.Register(api)
		}
	})

	return r
}
