package enrichment

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	jobs          *prometheus.CounterVec
	phaseFailures *prometheus.CounterVec
	duration      prometheus.Histogram
	translations  prometheus.Counter
}

// NewMetrics creates the pipeline collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enrichit",
			Name:      "jobs_total",
			Help:      "Enrichment jobs processed, by outcome.",
		}, []string{"outcome"}),
		phaseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enrichit",
			Name:      "phase_failures_total",
			Help:      "Enrichment phase failures, by phase and stage.",
		}, []string{"phase", "stage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "enrichit",
			Name:      "job_duration_seconds",
			Help:      "Wall time of enrichment jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		translations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "enrichit",
			Name:      "ocr_translations_total",
			Help:      "OCR texts translated into the target language.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.jobs, m.phaseFailures, m.duration, m.translations)
	}
	return m
}

func (m *Metrics) observe(out *Outcome) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(out.Result()).Inc()
	m.duration.Observe(out.Duration.Seconds())
	for _, err := range []error{out.ContentErr, out.IndexErr} {
		if jobErr, ok := err.(*JobError); ok {
			m.phaseFailures.WithLabelValues(string(jobErr.Phase), string(jobErr.Stage)).Inc()
		}
	}
}

func (m *Metrics) translated() {
	if m == nil {
		return
	}
	m.translations.Inc()
}
