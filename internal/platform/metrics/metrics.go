// Package metrics holds process-wide HTTP metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP holds request counters and latency per route pattern.
type HTTP struct {
	RequestsTotal   *prometheus.CounterVec
	EndpointLatency *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *HTTP {
	factory := promauto.With(reg)
	return &HTTP{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_http_requests_total",
			Help: "Total number of HTTP requests, labeled by method, route and status",
		}, []string{"method", "route", "status"}),
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signup_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *HTTP) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.EndpointLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Middleware labels by chi route pattern so path parameters such as session
// IDs never become label values. Unmatched requests use "unmatched".
func (m *HTTP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.ObserveRequest(r.Method, route, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
