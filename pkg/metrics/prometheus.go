// Package metrics provides Prometheus metrics for the affinity scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// scoreBuckets covers the [0, 100] score range.
var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100} //nolint:gochecknoglobals // fixed bucket layout

// Manager owns every metric of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring
	compatibilityScored    *prometheus.CounterVec
	compatibilityLatency   prometheus.Histogram
	compatibilityScore     prometheus.Histogram
	recommendationsScored  *prometheus.CounterVec
	recommendationLatency  *prometheus.HistogramVec
	recommendationScore    prometheus.Histogram
	similarityComputations prometheus.Counter
	skillEstimates         *prometheus.CounterVec
	matchWeights           *prometheus.GaugeVec

	// Recommendation jobs
	jobsAccepted  prometheus.Counter
	jobsDuplicate prometheus.Counter
	jobsRejected  prometheus.Counter
	jobsProcessed prometheus.Counter

	// Boards
	boardUpdates  prometheus.Counter
	boardUsers    prometheus.Gauge
	boardEntries  prometheus.Gauge
	boardEvicted  prometheus.Counter
	boardQueryLat prometheus.Histogram

	// Cache
	cacheRequests *prometheus.CounterVec

	// Queue
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "affinity",
		subsystem:        "scoring",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.compatibilityScored = m.counterVec("compatibility_scored_total",
		"Team compatibility evaluations by call mode", "mode")
	m.compatibilityLatency = m.histogram("compatibility_latency_milliseconds",
		"Latency of a compatibility evaluation in milliseconds", m.histogramBuckets)
	m.compatibilityScore = m.histogram("compatibility_total_score",
		"Distribution of compatibility total scores", scoreBuckets)
	m.recommendationsScored = m.counterVec("recommendations_scored_total",
		"Server recommendation evaluations by strategy", "strategy")
	m.recommendationLatency = m.histogramVec("recommendation_latency_milliseconds",
		"Latency of a recommendation evaluation in milliseconds", m.histogramBuckets, "strategy")
	m.recommendationScore = m.histogram("recommendation_final_score",
		"Distribution of recommendation final scores", scoreBuckets)
	m.similarityComputations = m.counter("similarity_computations_total",
		"Set similarity computations served")
	m.skillEstimates = m.counterVec("skill_estimates_total",
		"Fallback skill estimates by resulting level", "level")
	m.matchWeights = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "match_weight", Help: "Configured matchmaking weight per criterion",
	}, []string{"criterion"})

	m.jobsAccepted = m.counter("jobs_accepted_total", "Recommendation jobs accepted into the queue")
	m.jobsDuplicate = m.counter("jobs_duplicate_total", "Recommendation jobs dropped as duplicates")
	m.jobsRejected = m.counter("jobs_rejected_total", "Recommendation jobs rejected by backpressure")
	m.jobsProcessed = m.counter("jobs_processed_total", "Recommendation jobs scored by workers")

	m.boardUpdates = m.counter("board_updates_total", "Board entries inserted or replaced")
	m.boardUsers = m.gauge("board_users", "Users with a recommendation board")
	m.boardEntries = m.gauge("board_entries", "Entries across all recommendation boards")
	m.boardEvicted = m.counter("board_evictions_total", "Board entries evicted by the size cap")
	m.boardQueryLat = m.histogram("board_query_latency_milliseconds",
		"Board read latency in milliseconds", m.histogramBuckets)

	m.cacheRequests = m.counterVec("cache_requests_total",
		"Result cache lookups by backend and outcome", "backend", "result")

	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueSize = m.gauge("queue_size", "Jobs waiting in the queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Failed enqueue attempts")

	m.workerCount = m.gauge("worker_count", "Workers in the pool")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time to score a job and update the board in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs that failed in a worker")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Scoring.

// RecordCompatibility records one compatibility evaluation. Mode is "single"
// or "rank".
func RecordCompatibility(mode string, totalScore, latencyMs float64) {
	globalManager.compatibilityScored.WithLabelValues(mode).Inc()
	globalManager.compatibilityLatency.Observe(latencyMs)
	globalManager.compatibilityScore.Observe(totalScore)
}

// RecordRecommendation records one recommendation evaluation.
func RecordRecommendation(strategy string, finalScore, latencyMs float64) {
	globalManager.recommendationsScored.WithLabelValues(strategy).Inc()
	globalManager.recommendationLatency.WithLabelValues(strategy).Observe(latencyMs)
	globalManager.recommendationScore.Observe(finalScore)
}

// RecordSimilarity counts a similarity computation.
func RecordSimilarity() {
	globalManager.similarityComputations.Inc()
}

// RecordSkillEstimate counts a fallback skill estimate.
func RecordSkillEstimate(level string) {
	globalManager.skillEstimates.WithLabelValues(level).Inc()
}

// UpdateMatchWeights publishes the active matchmaking weights.
func UpdateMatchWeights(weights map[string]float64) {
	for criterion, w := range weights {
		globalManager.matchWeights.WithLabelValues(criterion).Set(w)
	}
}

// Jobs.

// RecordJobAccepted counts an accepted recommendation job.
func RecordJobAccepted() { globalManager.jobsAccepted.Inc() }

// RecordJobDuplicate counts a duplicate recommendation job.
func RecordJobDuplicate() { globalManager.jobsDuplicate.Inc() }

// RecordJobRejected counts a job rejected by backpressure.
func RecordJobRejected() { globalManager.jobsRejected.Inc() }

// RecordJobProcessed counts a job scored by a worker.
func RecordJobProcessed() { globalManager.jobsProcessed.Inc() }

// Boards.

// RecordBoardUpdate counts a board insert or replacement.
func RecordBoardUpdate() { globalManager.boardUpdates.Inc() }

// RecordBoardEviction counts entries dropped by the board size cap.
func RecordBoardEviction(n int) { globalManager.boardEvicted.Add(float64(n)) }

// UpdateBoardUsers sets the number of users holding a board.
func UpdateBoardUsers(count int) { globalManager.boardUsers.Set(float64(count)) }

// UpdateBoardEntries sets the number of entries across all boards.
func UpdateBoardEntries(count int) { globalManager.boardEntries.Set(float64(count)) }

// RecordBoardQueryLatency records a board read.
func RecordBoardQueryLatency(latencyMs float64) { globalManager.boardQueryLat.Observe(latencyMs) }

// Cache.

// RecordCacheResult counts a cache lookup. Result is "hit", "miss" or "error".
func RecordCacheResult(backend, result string) {
	globalManager.cacheRequests.WithLabelValues(backend, result).Inc()
}

// Queue.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueSize sets the queue size and derived utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue counts an enqueued job.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeued job.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a failed enqueue.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// Workers.

// UpdateWorkerCount sets the pool size.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records the time spent on one job.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// HTTP.

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Errors.

// RecordErrorByComponent counts an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records a GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry every global metric is registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
