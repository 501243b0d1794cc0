// Package httpapi composes the public HTTP surface: every context's handler
// under /api/v1 behind bearer auth, plus unauthenticated /healthz and /metrics.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dvi/internal/platform/metrics"
	"dvi/internal/platform/middleware"
	"dvi/pkg/platform/httputil"
)

const APIPrefix = "/api/v1"

// Registrar is implemented by every context handler.
type Registrar interface {
	Register(r chi.Router)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Tokens         middleware.TokenValidator
	RequestTimeout time.Duration
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
	// Health lists the dependencies /healthz pings, by name.
	Health map[string]Pinger
}

func NewRouter(cfg Config, handlers ...Registrar) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/healthz", healthHandler(cfg.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route(APIPrefix, func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuth(cfg.Tokens, logger))
		for _, h := range handlers {
			h.Register(api)
		}
	})
	return r
}

func healthHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, p := range deps {
			if err := p.Ping(ctx); err != nil {
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
	}
}
