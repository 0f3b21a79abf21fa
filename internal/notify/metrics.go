package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Emails *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Emails: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carecompliance_emails_total",
			Help: "Outbound emails by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncSent() {
	if m == nil {
		return
	}
	m.Emails.WithLabelValues("sent").Inc()
}

func (m *Metrics) IncFailed() {
	if m == nil {
		return
	}
	m.Emails.WithLabelValues("failed").Inc()
}
