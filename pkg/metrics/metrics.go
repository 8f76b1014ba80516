package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the booking engine.
type Metrics struct {
	// TransitionsTotal counts committed appointment status changes.
	TransitionsTotal *prometheus.CounterVec

	// ReconciliationsTotal counts gateway callbacks by purpose and result.
	ReconciliationsTotal *prometheus.CounterVec

	// RefundsTotal counts issued refunds by method.
	RefundsTotal *prometheus.CounterVec

	GatewayDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "appointment_transitions_total",
				Help:      "Total number of appointment status transitions",
			},
			[]string{"op", "from", "to"},
		),

		ReconciliationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_reconciliations_total",
				Help:      "Total number of payment reconciliations by outcome",
			},
			[]string{"purpose", "result"},
		),

		RefundsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refunds_issued_total",
				Help:      "Total number of refunds issued",
			},
			[]string{"method"},
		),

		GatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gateway_call_duration_seconds",
				Help:      "Time spent calling the payment gateway",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"call"},
		),
	}
}

func (m *Metrics) Transition(op, from, to string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(op, from, to).Inc()
}

func (m *Metrics) Reconciliation(purpose, result string) {
	if m == nil {
		return
	}
	m.ReconciliationsTotal.WithLabelValues(purpose, result).Inc()
}

func (m *Metrics) Refund(method string) {
	if m == nil {
		return
	}
	m.RefundsTotal.WithLabelValues(method).Inc()
}

func (m *Metrics) ObserveGateway(call string, seconds float64) {
	if m == nil {
		return
	}
	m.GatewayDuration.WithLabelValues(call).Observe(seconds)
}
