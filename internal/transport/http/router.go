package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signup/internal/platform/health"
	"signup/internal/platform/metrics"
	"signup/internal/platform/middleware"
	"signup/internal/shell"
	"signup/pkg/platform/httputil"
	limits "signup/pkg/platform/validation"
)

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// Config collects what the router needs from main.
type Config struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	Health         *health.Handler
	Shell          *shell.Shell
	Gatherer       prometheus.Gatherer
	HTTPMetrics    *metrics.HTTP
	Routes         []Registrar
}

// NewRouter wires all public endpoints with middleware. Probes and metrics sit
// outside the navigation group so scrapes never refresh authentication.
func NewRouter(cfg Config) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if cfg.HTTPMetrics != nil {
			r.Use(cfg.HTTPMetrics.Middleware)
		}
		r.Use(middleware.BodyLimit(limits.MaxBodySize))
		r.Use(middleware.ContentTypeJSON)
		if cfg.Shell != nil {
			r.Use(cfg.Shell.Middleware)
		}
		for _, route := range cfg.Routes {
			route.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "not_found"})
	})
	return r
}
