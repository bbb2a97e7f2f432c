package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRefresh("dashboard", OutcomeReady, 120*time.Millisecond)
	m.ObserveRefresh("dashboard", OutcomeReady, 80*time.Millisecond)
	m.ObserveRefresh("dashboard", OutcomeFailed, time.Second)
	m.RefreshRejected("dashboard")
	m.FetchFailed("product_stats")
	m.NormalizerFallback("top_products")
	m.NormalizerFallback("top_products")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.refreshTotal.WithLabelValues("dashboard", OutcomeReady)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshTotal.WithLabelValues("dashboard", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshRejected.WithLabelValues("dashboard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchFailures.WithLabelValues("product_stats")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.normalizerFallbacks.WithLabelValues("top_products")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.refreshDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRefresh("dashboard", OutcomeReady, time.Second)
		m.RefreshRejected("dashboard")
		m.FetchFailed("sales")
		m.NormalizerFallback("sales")
	})
}
