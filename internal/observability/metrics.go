package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// InteractionToggles counts like/save toggles by kind and direction.
	InteractionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_interaction_toggles_total",
		Help: "Total number of like/save toggles by kind and direction",
	}, []string{"kind", "direction"})

	// InteractionRollbacks counts optimistic counter rollbacks after store failures.
	InteractionRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_interaction_rollbacks_total",
		Help: "Total number of interaction state rollbacks by kind",
	}, []string{"kind"})

	// CounterAnomalies counts comment counter decrements that would have gone negative.
	CounterAnomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_counter_anomalies_total",
		Help: "Total number of denormalized counter anomalies by counter name",
	}, []string{"counter"})

	// SuggestFallbacks counts title/hashtag suggestion requests served from the static fallback.
	SuggestFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_suggest_fallbacks_total",
		Help: "Total number of suggestion requests served by the static fallback",
	})

	// MediaUploadBytes records the size distribution of accepted media uploads.
	MediaUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inkwell_media_upload_bytes",
		Help:    "Size in bytes of accepted media uploads",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})
)

// TrackQuery returns a func that records query latency when called.
// Meant to be deferred at the top of a repository read.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
