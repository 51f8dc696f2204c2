package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the goalboard collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	gatewayWrites *prometheus.CounterVec
	records       *prometheus.CounterVec
	refusals      *prometheus.CounterVec
	inflight      prometheus.Gauge
}

// MustNewMetrics registers the collectors on reg, reusing collectors that are
// already registered under the same name. Any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		gatewayWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalboard",
			Name:      "gateway_writes_total",
			Help:      "Persistence gateway writes by table and outcome.",
		}, []string{"table", "outcome"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalboard",
			Name:      "records_created_total",
			Help:      "Records appended to the in-memory store.",
		}, []string{"kind"}),
		refusals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goalboard",
			Name:      "wizard_refusals_total",
			Help:      "Wizard transitions refused by a step guard.",
		}, []string{"wizard", "transition"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goalboard",
			Name:      "gateway_inflight",
			Help:      "Gateway dispatches not yet finished.",
		}),
	}
	m.gatewayWrites = register(reg, m.gatewayWrites)
	m.records = register(reg, m.records)
	m.refusals = register(reg, m.refusals)
	m.inflight = register(reg, m.inflight)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// GatewayWrite counts one sink write. outcome is "ok" or "error".
func (m *Metrics) GatewayWrite(table, outcome string) {
	if m == nil {
		return
	}
	m.gatewayWrites.WithLabelValues(table, outcome).Inc()
}

func (m *Metrics) RecordCreated(kind string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(kind).Inc()
}

func (m *Metrics) Refused(wizard, transition string) {
	if m == nil {
		return
	}
	m.refusals.WithLabelValues(wizard, transition).Inc()
}

func (m *Metrics) DispatchStarted() {
	if m == nil {
		return
	}
	m.inflight.Inc()
}

func (m *Metrics) DispatchDone() {
	if m == nil {
		return
	}
	m.inflight.Dec()
}
