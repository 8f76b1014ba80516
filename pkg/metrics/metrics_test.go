package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := NewMetrics("spa", prometheus.NewRegistry())

	m.Transition("confirm", "pending", "confirmed")
	m.Transition("confirm", "pending", "confirmed")
	m.Reconciliation("deposit", "applied")
	m.Refund("cash")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("confirm", "pending", "confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconciliationsTotal.WithLabelValues("deposit", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefundsTotal.WithLabelValues("cash")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Transition("confirm", "pending", "confirmed")
		m.Reconciliation("final", "duplicate")
		m.Refund("qr")
		m.ObserveGateway("verify", 0.1)
	})
}
