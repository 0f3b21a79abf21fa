package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit emission.
type Metrics struct {
	Emitted         prometheus.Counter
	Dropped         prometheus.Counter
	PersistFailures prometheus.Counter
}

// NewMetrics registers audit metrics on the default registry. Call once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_audit_records_emitted_total",
			Help: "Total number of audit records persisted by the sink",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_audit_records_dropped_total",
			Help: "Total number of audit records dropped because the buffer was full",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_audit_persist_failures_total",
			Help: "Total number of audit records the sink failed to persist",
		}),
	}
}

func (m *Metrics) incEmitted() {
	if m == nil {
		return
	}
	m.Emitted.Inc()
}

func (m *Metrics) incDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) incPersistFailures() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}
