// Package metrics provides Prometheus metrics for registration sessions and
// postal-code lookups.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the registration metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Lookup metrics
	LookupsTotal          *prometheus.CounterVec   // Lookups by outcome (found, not_found, transport_error)
	LookupDurationSeconds *prometheus.HistogramVec // Upstream lookup latency by outcome
	LookupCacheHitsTotal  prometheus.Counter
	LookupCacheMissTotal  prometheus.Counter
	LookupBreakerOpen     prometheus.Gauge // 1 while the lookup breaker rejects calls

	// Session metrics
	SessionsCreatedTotal prometheus.Counter
	SessionsExpiredTotal prometheus.Counter
	ActiveSessions       prometheus.Gauge
	SubmissionsTotal     *prometheus.CounterVec // Submissions by outcome (succeeded, rejected, failed)
}

// New registers the metrics with reg. Tests pass a fresh prometheus.Registry;
// the server passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_postal_code_lookups_total",
			Help: "Total number of postal code lookups by outcome",
		}, []string{"outcome"}),

		LookupDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signup_postal_code_lookup_duration_seconds",
			Help:    "Duration of upstream postal code lookups by outcome",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}),

		LookupCacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_postal_code_cache_hits_total",
			Help: "Total number of postal code cache hits",
		}),

		LookupCacheMissTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_postal_code_cache_misses_total",
			Help: "Total number of postal code cache misses",
		}),

		LookupBreakerOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "signup_postal_code_breaker_open",
			Help: "Whether the postal code lookup circuit breaker is open",
		}),

		SessionsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_sessions_created_total",
			Help: "Total number of registration sessions created",
		}),

		SessionsExpiredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_sessions_expired_total",
			Help: "Total number of registration sessions removed after idling past their TTL",
		}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "signup_active_sessions",
			Help: "Current number of registration sessions",
		}),

		SubmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_submissions_total",
			Help: "Total number of registration submissions by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) RecordLookup(outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(outcome).Inc()
	m.LookupDurationSeconds.WithLabelValues(outcome).Observe(durationSeconds)
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.LookupCacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.LookupCacheMissTotal.Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.LookupBreakerOpen.Set(1)
		return
	}
	m.LookupBreakerOpen.Set(0)
}

func (m *Metrics) IncrementSessionsCreated() {
	if m == nil {
		return
	}
	m.SessionsCreatedTotal.Inc()
	m.ActiveSessions.Inc()
}

// RecordSessionsRemoved lowers the active gauge; expired marks TTL evictions.
func (m *Metrics) RecordSessionsRemoved(n int, expired bool) {
	if m == nil || n == 0 {
		return
	}
	m.ActiveSessions.Sub(float64(n))
	if expired {
		m.SessionsExpiredTotal.Add(float64(n))
	}
}

func (m *Metrics) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}
