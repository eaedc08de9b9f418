package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the distribution lifecycle.
type Metrics struct {
	Issued         prometheus.Counter
	Completed      prometheus.Counter
	Resolved       *prometheus.CounterVec
	NotifyFailures prometheus.Counter
	IssueDuration  prometheus.Histogram
}

// New creates and registers all distribution metrics.
func New() *Metrics {
	return &Metrics{
		Issued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rfdist_distributions_issued_total",
			Help: "Total number of distribution tokens issued",
		}),
		Completed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rfdist_distributions_completed_total",
			Help: "Total number of completion reports accepted",
		}),
		Resolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rfdist_distributions_resolved_total",
			Help: "Token resolutions by outcome",
		}, []string{"outcome"}),
		NotifyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rfdist_notifications_failed_total",
			Help: "Push notification dispatch failures (swallowed)",
		}),
		IssueDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rfdist_issue_duration_seconds",
			Help:    "Latency of the issue operation",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncIssued()    { m.Issued.Inc() }
func (m *Metrics) IncCompleted() { m.Completed.Inc() }

func (m *Metrics) IncResolved(outcome string) {
	m.Resolved.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncNotifyFailure() { m.NotifyFailures.Inc() }

func (m *Metrics) ObserveIssueDuration(seconds float64) {
	m.IssueDuration.Observe(seconds)
}
