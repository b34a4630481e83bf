// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "debtplan"

// Metrics groups the collectors. Each server owns its own registry so tests
// can create independent instances.
type Metrics struct {
	Registry *prometheus.Registry

	RPCRequests *prometheus.CounterVec   // procedure, code
	RPCDuration *prometheus.HistogramVec // procedure
	Payments    *prometheus.CounterVec   // kind: partial|full|overpaid
	Settlements prometheus.Counter
	Rejected    *prometheus.CounterVec // reason
}

// New creates and registers all collectors, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments recorded, by whether they covered the outstanding balance.",
		}, []string{"kind"}),
		Settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Obligations marked paid.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_operations_total",
			Help:      "Operations refused by obligation rules, by reason.",
		}, []string{"reason"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RPCRequests,
		m.RPCDuration,
		m.Payments,
		m.Settlements,
		m.Rejected,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Payment kinds.
const (
	PaymentPartial  = "partial"
	PaymentFull     = "full"
	PaymentOverpaid = "overpaid"
)

// ObservePayment counts a recorded payment. A nil receiver is a no-op.
func (m *Metrics) ObservePayment(kind string) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(kind).Inc()
}

// ObserveSettlement counts a settled obligation. A nil receiver is a no-op.
func (m *Metrics) ObserveSettlement() {
	if m == nil {
		return
	}
	m.Settlements.Inc()
}

// ObserveRejection counts an operation refused by a rule. A nil receiver is
// a no-op.
func (m *Metrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(reason).Inc()
}
