package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_http_requests_total",
			Help: "HTTP requests processed, by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stats_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// SessionsIngested counts newly persisted session records.
	SessionsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_sessions_ingested_total",
			Help: "Session completion events persisted, by session type.",
		},
		[]string{"session_type"},
	)

	// IdempotentReplays counts ingestion requests answered from an
	// already-stored record via the idempotency key.
	IdempotentReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_sessions_idempotent_replays_total",
			Help: "Ingestion requests deduplicated by idempotency key.",
		},
	)

	// MilestonesEmitted counts achievement events returned to clients.
	MilestonesEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_milestones_emitted_total",
			Help: "Milestone events emitted, by milestone type.",
		},
		[]string{"type"},
	)

	// SnapshotCacheHits / SnapshotCacheMisses track the per-user
	// snapshot cache. A miss always falls back to full recomputation.
	SnapshotCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_snapshot_cache_hits_total",
			Help: "Stats reads served from the snapshot cache.",
		},
	)
	SnapshotCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_snapshot_cache_misses_total",
			Help: "Stats reads recomputed from the session store.",
		},
	)

	// ComputeInconsistencies counts detected disagreements between a
	// cached snapshot and a fresh recomputation. Always a bug.
	ComputeInconsistencies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_compute_inconsistencies_total",
			Help: "Cached snapshot vs recomputation disagreements detected.",
		},
	)
)

// PrometheusMiddleware records request counts and latency per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// FullPath keeps cardinality bounded (route template, not raw URL).
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
