package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks document lifecycle counts and upload validation failures.
type Metrics struct {
	ISPUploaded      prometheus.Counter
	ISPActivated     prometheus.Counter
	ISPArchived      prometheus.Counter
	FireEvacUploaded prometheus.Counter
	UploadRejected   *prometheus.CounterVec
	ActivateDuration prometheus.Histogram
}

// New registers the document metrics with the default registry.
func New() *Metrics {
	return &Metrics{
		ISPUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_isp_uploaded_total",
			Help: "Total number of ISP drafts uploaded",
		}),
		ISPActivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_isp_activated_total",
			Help: "Total number of ISP files activated",
		}),
		ISPArchived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_isp_archived_total",
			Help: "Total number of ISP files archived, including supersession",
		}),
		FireEvacUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carecompliance_fire_evac_uploaded_total",
			Help: "Total number of Fire-Evac plan versions uploaded",
		}),
		UploadRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carecompliance_upload_rejected_total",
			Help: "Uploads rejected by validation, by document kind",
		}, []string{"kind"}),
		ActivateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "carecompliance_isp_activate_duration_seconds",
			Help:    "Duration of ISP activation including supersession",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncISPUploaded() {
	if m == nil {
		return
	}
	m.ISPUploaded.Inc()
}

func (m *Metrics) IncISPActivated() {
	if m == nil {
		return
	}
	m.ISPActivated.Inc()
}

// AddISPArchived counts explicit archives and supersessions.
func (m *Metrics) AddISPArchived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ISPArchived.Add(float64(n))
}

func (m *Metrics) IncFireEvacUploaded() {
	if m == nil {
		return
	}
	m.FireEvacUploaded.Inc()
}

func (m *Metrics) IncUploadRejected(kind string) {
	if m == nil {
		return
	}
	m.UploadRejected.WithLabelValues(kind).Inc()
}

// ObserveActivate records an activation. Call with time.Now() at the start.
func (m *Metrics) ObserveActivate(start time.Time) {
	if m == nil {
		return
	}
	m.ActivateDuration.Observe(time.Since(start).Seconds())
}
