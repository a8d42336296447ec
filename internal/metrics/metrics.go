// Package metrics centralizes the Prometheus instrumentation for the
// aggregation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncCyclesTotal counts completed sync cycles by result
	// (success, failure, busy).
	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "activityx",
			Name:      "sync_cycles_total",
			Help:      "Sync cycles finished, labeled by result.",
		},
		[]string{"result"},
	)

	// RowsFetchedTotal counts raw activity rows fetched from the backend.
	RowsFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "activityx",
			Name:      "rows_fetched_total",
			Help:      "Raw activity rows fetched from the inbox backend.",
		},
	)

	// BatchesMergedTotal counts batches accepted into the local ledger.
	BatchesMergedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "activityx",
			Name:      "batches_merged_total",
			Help:      "Batches accepted into the cumulative store.",
		},
	)

	// TrackedUsers reports the number of users in the local store after the
	// most recent merge.
	TrackedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "activityx",
			Name:      "tracked_users",
			Help:      "Users present in the cumulative store.",
		},
	)

	// SyncDurationSeconds observes wall-clock duration of full sync cycles.
	SyncDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "activityx",
			Name:      "sync_duration_seconds",
			Help:      "Duration of fetch-merge-persist-drain cycles.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
