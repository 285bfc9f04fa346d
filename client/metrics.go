package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Task outcomes used as the "outcome" label.
const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeCancelled = "cancelled"
)

// metrics holds the session task collectors. A nil *metrics records
// nothing.
type metrics struct {
	started  prometheus.Counter
	finished *prometheus.CounterVec
	inFlight prometheus.Gauge
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}

	f := promauto.With(reg)
	return &metrics{
		started: f.NewCounter(prometheus.CounterOpts{
			Name: "apiconn_tasks_started_total",
			Help: "Total number of tasks whose execution began",
		}),
		finished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "apiconn_tasks_finished_total",
			Help: "Total number of finished tasks by outcome",
		}, []string{"outcome"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "apiconn_tasks_in_flight",
			Help: "Number of tasks currently executing",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "apiconn_task_duration_seconds",
			Help:    "Task execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *metrics) begin() {
	if m == nil {
		return
	}
	m.started.Inc()
	m.inFlight.Inc()
}

func (m *metrics) end(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.finished.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
