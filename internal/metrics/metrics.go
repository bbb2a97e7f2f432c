// Package metrics exposes Prometheus instruments for the aggregation pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "retailsense_dashboard"

// Refresh outcomes.
const (
	OutcomeReady    = "ready"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	refreshTotal        *prometheus.CounterVec
	refreshDuration     *prometheus.HistogramVec
	refreshRejected     *prometheus.CounterVec
	fetchFailures       *prometheus.CounterVec
	normalizerFallbacks *prometheus.CounterVec
}

// New registers the instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		refreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Refresh cycles by view and outcome.",
		}, []string{"view", "outcome"}),
		refreshDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a refresh cycle, bounded by the slowest backend call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		refreshRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_rejected_total",
			Help:      "Refresh triggers ignored because a cycle was already loading.",
		}, []string{"view"}),
		fetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Backend calls that failed, by endpoint.",
		}, []string{"endpoint"}),
		normalizerFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalizer_fallbacks_total",
			Help:      "Responses of unrecognised shape degraded to empty data, by endpoint.",
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) ObserveRefresh(view, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(view, outcome).Inc()
	m.refreshDuration.WithLabelValues(view).Observe(elapsed.Seconds())
}

func (m *Metrics) RefreshRejected(view string) {
	if m == nil {
		return
	}
	m.refreshRejected.WithLabelValues(view).Inc()
}

func (m *Metrics) FetchFailed(endpoint string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) NormalizerFallback(endpoint string) {
	if m == nil {
		return
	}
	m.normalizerFallbacks.WithLabelValues(endpoint).Inc()
}
