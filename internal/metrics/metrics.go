// Package metrics holds the Prometheus collectors shared by the gateway and the session.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sales_client"

// Metrics holds all Prometheus metrics for the client.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	AuthFailuresTotal  prometheus.Counter
	SessionTransitions *prometheus.CounterVec
	Authenticated      prometheus.Gauge
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of backend API requests",
			},
			[]string{"code", "method"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Backend API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		AuthFailuresTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Responses with status 401 on authenticated requests",
			},
		),
		SessionTransitions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_transitions_total",
				Help:      "Session state transitions",
			},
			[]string{"to", "reason"}, // to=anonymous/authenticated, reason=resolve/login/logout/auth_failure
		),
		Authenticated: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "session_authenticated",
				Help:      "1 while the session holds an authenticated user",
			},
		),
	}
}

// Transition records a session state change. Safe on a nil receiver.
func (m *Metrics) Transition(to, reason string) {
	if m == nil {
		return
	}
	m.SessionTransitions.WithLabelValues(to, reason).Inc()
	if to == "authenticated" {
		m.Authenticated.Set(1)
	} else {
		m.Authenticated.Set(0)
	}
}

// AuthFailure counts a 401 seen by the gateway. Safe on a nil receiver.
func (m *Metrics) AuthFailure() {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.Inc()
}
