package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SyncMetrics bundles the Prometheus metrics for the hearing pipeline.
type SyncMetrics struct {
	Runs       *prometheus.CounterVec
	Synced     prometheus.Counter
	Errors     prometheus.Counter
	Discovered prometheus.Gauge
	Duration   prometheus.Histogram
}

// NewSyncMetrics registers the pipeline metrics with reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	f := promauto.With(reg)
	return &SyncMetrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civic_sync",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of sync runs by trigger source.",
		}, []string{"trigger"}),
		Synced: f.NewCounter(prometheus.CounterOpts{
			Namespace: "civic_sync",
			Subsystem: "pipeline",
			Name:      "hearings_synced_total",
			Help:      "Total number of new hearings written to the store.",
		}),
		Errors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "civic_sync",
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Total number of per-hearing failures across all runs.",
		}),
		Discovered: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "civic_sync",
			Subsystem: "pipeline",
			Name:      "hearings_discovered",
			Help:      "Hearing identifiers discovered by the most recent run.",
		}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "civic_sync",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
}
