package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cookconnect_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReactionToggles counts reaction toggles by target kind and resulting action.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookconnect_reaction_toggles_total",
		Help: "Total number of reaction toggles by target and action",
	}, []string{"target", "action"})

	// RecipeMutations counts recipe create/update/delete attempts by outcome.
	RecipeMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookconnect_recipe_mutations_total",
		Help: "Total number of recipe mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	// OrphanedBlobs counts stored images left without a referencing row.
	OrphanedBlobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookconnect_orphaned_blobs_total",
		Help: "Total number of blobs left unreferenced after a failed or destructive mutation",
	}, []string{"reason"})
)

// TrackQuery returns a function that records query latency when called, typically deferred.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordMutation counts one recipe mutation. err == nil is recorded as success.
func RecordMutation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "rollback"
	}
	RecipeMutations.WithLabelValues(operation, outcome).Inc()
}
