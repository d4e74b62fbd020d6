package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the aggregation service

var (
	// Upstream call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_upstream_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"upstream", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nfl_upstream_call_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	// Fallback metrics
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_fallbacks_total",
			Help: "Total number of times a component substituted synthetic output",
		},
		[]string{"component", "reason"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nfl_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfl_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfl_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nfl_cache_hits_total",
			Help: "Total number of view cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nfl_cache_misses_total",
			Help: "Total number of view cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nfl_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Refresh metrics
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_refresh_total",
			Help: "Total number of pipeline refreshes",
		},
		[]string{"trigger", "mode"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nfl_refresh_duration_seconds",
			Help:    "Duration of a full pipeline refresh in seconds",
			Buckets: []float64{.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nfl_refresh_stage_duration_seconds",
			Help:    "Duration of each refresh stage in seconds",
			Buckets: []float64{.01, .1, .5, 1, 5, 10, 30, 90},
		},
		[]string{"stage"},
	)

	StageItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_refresh_stage_items_total",
			Help: "Total number of entities persisted by each refresh stage",
		},
		[]string{"stage"},
	)

	// Store metrics
	StoreEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nfl_store_entities",
			Help: "Number of entities held by the composed-view store",
		},
		[]string{"collection"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// Scheduler metrics
	SchedulerTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_scheduler_ticks_total",
			Help: "Total number of scheduled refresh ticks",
		},
		[]string{"trigger"},
	)

	LastSuccessfulRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfl_last_successful_refresh_timestamp",
			Help: "Timestamp of the last completed refresh",
		},
	)
)

// RecordAPICall records an upstream call metric
func RecordAPICall(upstream, status string, duration float64) {
	APICallsTotal.WithLabelValues(upstream, status).Inc()
	APICallDuration.WithLabelValues(upstream).Observe(duration)
}

// RecordFallback records a synthetic substitution
func RecordFallback(component, reason string) {
	FallbacksTotal.WithLabelValues(component, reason).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordRefresh records a full refresh
func RecordRefresh(trigger string, synthetic bool, duration float64) {
	mode := "live"
	if synthetic {
		mode = "synthetic"
	}
	RefreshTotal.WithLabelValues(trigger, mode).Inc()
	RefreshDuration.Observe(duration)
	LastSuccessfulRefresh.SetToCurrentTime()
}

// RecordStage records one refresh stage
func RecordStage(stage string, items int, duration float64) {
	StageDuration.WithLabelValues(stage).Observe(duration)
	StageItemsTotal.WithLabelValues(stage).Add(float64(items))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// UpdateStoreStats updates the store collection gauges
func UpdateStoreStats(teams, games, stats, odds, predictions, advice int) {
	StoreEntities.WithLabelValues("teams").Set(float64(teams))
	StoreEntities.WithLabelValues("games").Set(float64(games))
	StoreEntities.WithLabelValues("team_stats").Set(float64(stats))
	StoreEntities.WithLabelValues("odds").Set(float64(odds))
	StoreEntities.WithLabelValues("predictions").Set(float64(predictions))
	StoreEntities.WithLabelValues("advice").Set(float64(advice))
}

// RecordSchedulerTick records a scheduled refresh trigger
func RecordSchedulerTick(trigger string) {
	SchedulerTicksTotal.WithLabelValues(trigger).Inc()
}
