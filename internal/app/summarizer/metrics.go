package summarizer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the orchestrator's prometheus collectors.
type Metrics struct {
	QueueDepth      prometheus.Gauge
	ActivePipelines prometheus.Gauge
	Terminal        *prometheus.CounterVec
	Failures        *prometheus.CounterVec
	PollAttempts    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voicenotes",
			Subsystem: "summary",
			Name:      "queue_depth",
			Help:      "Audio records waiting for the summarization worker.",
		}),
		ActivePipelines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voicenotes",
			Subsystem: "summary",
			Name:      "pipelines_active",
			Help:      "Summarization pipelines currently running.",
		}),
		Terminal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicenotes",
			Subsystem: "summary",
			Name:      "terminal_total",
			Help:      "Summarization attempts that reached a terminal status.",
		}, []string{"status"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicenotes",
			Subsystem: "summary",
			Name:      "failures_total",
			Help:      "Failed summarization attempts by reason.",
		}, []string{"reason"}),
		PollAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voicenotes",
			Subsystem: "summary",
			Name:      "poll_attempts",
			Help:      "Summary polls issued per pipeline.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 10, 12, 16, 24},
		}),
	}

	if reg != nil {
		reg.MustRegister(m.QueueDepth, m.ActivePipelines, m.Terminal, m.Failures, m.PollAttempts)
	}
	return m
}
