package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.3, 0.6, 1, 3, 6, 9, 20, 30, 60, 90, 120},
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// Sync metrics
	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of differential sync runs, by terminal state",
		},
		[]string{"state"},
	)

	syncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Duration of a full ingest-to-materialize sync run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"state"},
	)

	syncProductsChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_products_changed_total",
			Help: "Total products added, updated, or deleted across sync runs",
		},
		[]string{"change"},
	)

	// Materializer metrics
	materializerEdgesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materializer_edges_written_total",
			Help: "Total compatibility edges written by the graph materializer",
		},
		[]string{"direction"},
	)

	materializerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "materializer_duration_seconds",
			Help:    "Duration of one materialization pass over a changed-SKU batch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
		},
	)

	// Webhook queue metrics
	webhookJobsEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_jobs_enqueued_total",
			Help: "Total webhook jobs enqueued (coalesced jobs still count once)",
		},
	)

	webhookQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webhook_queue_depth",
			Help: "1 if a webhook job is currently pending, 0 otherwise",
		},
	)

	webhookFeedDownloadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_feed_download_bytes",
			Help:    "Size of downloaded vendor feed workbooks",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	// Lookup metrics
	lookupCacheResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_results_total",
			Help: "Total compatibility lookups, by cache hit/miss",
		},
		[]string{"result"},
	)

	// Database metrics
	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "table"},
	)

	cacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)
)

// MetricsCollector provides methods to record various metrics
type MetricsCollector struct{}

// NewMetricsCollector creates a new metrics collector instance
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, statusCode).Observe(duration.Seconds())
}

// RecordSyncRun records the terminal state and duration of one
// differential sync run (C5+C6 combined).
func (m *MetricsCollector) RecordSyncRun(state string, duration time.Duration) {
	syncRunsTotal.WithLabelValues(state).Inc()
	syncRunDuration.WithLabelValues(state).Observe(duration.Seconds())
}

// RecordProductsChanged records the added/updated/deleted counts from
// one sync run's DiffReport.
func (m *MetricsCollector) RecordProductsChanged(added, updated, deleted int) {
	syncProductsChanged.WithLabelValues("added").Add(float64(added))
	syncProductsChanged.WithLabelValues("updated").Add(float64(updated))
	syncProductsChanged.WithLabelValues("deleted").Add(float64(deleted))
}

// RecordMaterialization records one materializer pass's edge counts and
// duration.
func (m *MetricsCollector) RecordMaterialization(forwardEdges, reverseEdges int, duration time.Duration) {
	materializerEdgesWritten.WithLabelValues("forward").Add(float64(forwardEdges))
	materializerEdgesWritten.WithLabelValues("reverse").Add(float64(reverseEdges))
	materializerDuration.Observe(duration.Seconds())
}

// RecordWebhookEnqueued records a webhook job accepted onto the queue.
func (m *MetricsCollector) RecordWebhookEnqueued() {
	webhookJobsEnqueuedTotal.Inc()
}

// SetWebhookQueueDepth reports whether a job is currently pending.
func (m *MetricsCollector) SetWebhookQueueDepth(pending bool) {
	if pending {
		webhookQueueDepth.Set(1)
		return
	}
	webhookQueueDepth.Set(0)
}

// RecordFeedDownloadBytes records the size of a downloaded vendor feed.
func (m *MetricsCollector) RecordFeedDownloadBytes(bytes int64) {
	webhookFeedDownloadBytes.Observe(float64(bytes))
}

// RecordLookup records a compatibility lookup's cache outcome.
func (m *MetricsCollector) RecordLookup(cacheHit bool) {
	if cacheHit {
		lookupCacheResultsTotal.WithLabelValues("hit").Inc()
		return
	}
	lookupCacheResultsTotal.WithLabelValues("miss").Inc()
}

// RecordDatabaseQuery records database query metrics
func (m *MetricsCollector) RecordDatabaseQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// UpdateDatabaseConnections updates active database connections metric
func (m *MetricsCollector) UpdateDatabaseConnections(count float64) {
	dbConnectionsActive.Set(count)
}

// RecordCacheOperation records cache operation metrics
func (m *MetricsCollector) RecordCacheOperation(operation, result string) {
	cacheOperations.WithLabelValues(operation, result).Inc()
}

// PrometheusMiddleware creates a Gin middleware for recording HTTP metrics
func PrometheusMiddleware(collector *MetricsCollector) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		// Record metrics
		duration := time.Since(start)
		statusCode := c.Writer.Status()
		method := c.Request.Method
		endpoint := c.FullPath()

		// Better endpoint labeling for metrics cardinality control
		if endpoint == "" {
			// For unmatched routes, use a more descriptive label based on the request
			if statusCode == 404 {
				endpoint = "not_found"
			} else if method == "OPTIONS" {
				endpoint = "cors_preflight"
			} else {
				endpoint = "unknown"
			}
		}

		collector.RecordHTTPRequest(method, endpoint, strconv.Itoa(statusCode), duration)
	})
}

// GetGlobalMetricsCollector returns a global instance of MetricsCollector
var globalMetricsCollector = NewMetricsCollector()

func GetGlobalMetricsCollector() *MetricsCollector {
	return globalMetricsCollector
}
