package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scholar_feed"

// Metrics groups the counters exported on /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// UpstreamRequests counts calls to external APIs by source, operation and outcome.
	UpstreamRequests *prometheus.CounterVec

	// UpstreamDuration observes external call latency in seconds.
	UpstreamDuration *prometheus.HistogramVec

	// HTTPRequests counts inbound requests by route pattern, method and status.
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Calls to external APIs.",
		}, []string{"source", "operation", "outcome"}),
		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of calls to external APIs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "operation"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests.",
		}, []string{"route", "method", "status"}),
	}
}

// ObserveUpstream records one external call that started at start.
func (m *Metrics) ObserveUpstream(source, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(source, operation, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(source, operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveHTTP(route, method, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
}
