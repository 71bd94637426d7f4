package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records payment dispatch and callback outcomes by method.
type PaymentMetrics struct {
	dispatched *prometheus.CounterVec
	callbacks  *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_dispatched_total",
		Help: "Payment attempts by method and outcome.",
	}, []string{"method", "outcome"})
	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callbacks_total",
		Help: "Gateway callbacks by kind and outcome.",
	}, []string{"kind", "outcome"})
	reg.MustRegister(dispatched, callbacks)
	return &PaymentMetrics{
		dispatched: dispatched,
		callbacks:  callbacks,
	}
}

// IncDispatched increments the dispatch counter for a method and outcome.
func (p *PaymentMetrics) IncDispatched(method, outcome string) {
	if p == nil || p.dispatched == nil {
		return
	}
	p.dispatched.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncCallback increments the callback counter for a kind and outcome.
func (p *PaymentMetrics) IncCallback(kind, outcome string) {
	if p == nil || p.callbacks == nil {
		return
	}
	p.callbacks.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}
