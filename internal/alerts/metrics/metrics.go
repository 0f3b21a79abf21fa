package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the generation job and dismissals.
type Metrics struct {
	AlertsCreated  *prometheus.CounterVec
	StepFailures   prometheus.Counter
	RunsSkipped    *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	AlertDismissed prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		AlertsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carecompliance_alerts_created_total",
			Help: "Alerts created by the generation job, by type",
		}, []string{"type"}),
		StepFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_alert_step_failures_total",
			Help: "Generation steps that failed and were skipped",
		}),
		RunsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carecompliance_alert_runs_skipped_total",
			Help: "Scheduled runs not executed, by reason",
		}, []string{"reason"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "carecompliance_alert_run_duration_seconds",
			Help:    "Duration of alert generation runs",
			Buckets: prometheus.DefBuckets,
		}),
		AlertDismissed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_alerts_dismissed_total",
			Help: "Alerts dismissed by users",
		}),
	}
}

func (m *Metrics) IncCreated(alertType string) {
	if m == nil {
		return
	}
	m.AlertsCreated.WithLabelValues(alertType).Inc()
}

func (m *Metrics) IncStepFailure() {
	if m == nil {
		return
	}
	m.StepFailures.Inc()
}

// IncSkipped records a scheduled tick that did not run: "disabled", "locked" or "lock_error".
func (m *Metrics) IncSkipped(reason string) {
	if m == nil {
		return
	}
	m.RunsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) IncDismissed() {
	if m == nil {
		return
	}
	m.AlertDismissed.Inc()
}
