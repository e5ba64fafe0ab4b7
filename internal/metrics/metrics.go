// Package metrics exposes the internal operational counters every sink
// and the primary ingestion queue can update: queue depth, dropped
// entries, retries, and file rotations. Registered against a private
// registry rather than the global default so embedding this library
// into a process that already runs its own prometheus registry never
// collides on metric names.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the private prometheus registry these metrics are
// registered against. HealthServer exposes it at /metrics.
var Registry = prometheus.NewRegistry()

var (
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "corelog",
		Name:      "queue_depth",
		Help:      "Current number of entries waiting in the primary ingestion queue.",
	})

	EntriesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "corelog",
		Name:      "entries_dropped_total",
		Help:      "Entries dropped by overflow policy, labeled by sink name.",
	}, []string{"sink"})

	BatchRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "corelog",
		Name:      "batch_retries_total",
		Help:      "Batch delivery retry attempts, labeled by sink name.",
	}, []string{"sink"})

	FileRotations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "corelog",
		Name:      "file_rotations_total",
		Help:      "Rolling file rotations performed, labeled by trigger (size|time).",
	}, []string{"trigger"})

	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "corelog",
		Name:      "entries_rate_limited_total",
		Help:      "Entries suppressed by the logger's rate limiter.",
	})
)

func init() {
	Registry.MustRegister(QueueDepth, EntriesDropped, BatchRetries, FileRotations, RateLimited)
}
