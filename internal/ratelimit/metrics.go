package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected prometheus.Counter
	Fallback prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_ratelimit_rejected_total",
			Help: "Requests rejected by the public endpoint rate limiter.",
		}),
		Fallback: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_ratelimit_fallback_total",
			Help: "Checks served by the in-memory fallback store.",
		}),
	}
}

func (m *Metrics) incRejected() {
	if m == nil {
		return
	}
	m.Rejected.Inc()
}

func (m *Metrics) incFallback() {
	if m == nil {
		return
	}
	m.Fallback.Inc()
}
