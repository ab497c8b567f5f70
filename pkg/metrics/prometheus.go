// Package metrics provides Prometheus metrics for the allocation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the allocation service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Allocation runs
	allocationRuns       *prometheus.CounterVec
	allocationDuration   *prometheus.HistogramVec
	allocationInFlight   prometheus.Gauge
	allocationEntries    prometheus.Histogram
	allocationShortlist  prometheus.Histogram
	remoteFailures       *prometheus.CounterVec
	staleFallbacks       prometheus.Counter
	invariantViolations  prometheus.Counter
	notificationsPublish *prometheus.CounterVec

	// Result store and repository
	storePublishes         *prometheus.CounterVec
	storePublishLatency    *prometheus.HistogramVec
	storedResults          prometheus.Gauge
	repositoryQueryLatency *prometheus.HistogramVec

	// Refresh queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueue            prometheus.Counter
	queueDequeue            prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// Process
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pmis",
		subsystem:        "allocation",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	sizeBuckets := []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
	msBuckets := []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

	m.allocationRuns = auto.NewCounterVec(
		m.counterOpts("runs_total", "Allocation runs by strategy and outcome"),
		[]string{"strategy", "outcome"},
	)
	m.allocationDuration = auto.NewHistogramVec(
		m.histogramOpts("run_duration_seconds", "Wall time of allocation runs", nil),
		[]string{"strategy"},
	)
	m.allocationInFlight = auto.NewGauge(m.gaugeOpts("runs_in_flight", "Allocation runs currently executing"))
	m.allocationEntries = auto.NewHistogram(m.histogramOpts("result_entries", "Candidates ranked per published result", sizeBuckets))
	m.allocationShortlist = auto.NewHistogram(m.histogramOpts("result_shortlisted", "Shortlisted candidates per published result", sizeBuckets))
	m.remoteFailures = auto.NewCounterVec(
		m.counterOpts("remote_failures_total", "Remote ranking calls that failed or returned malformed data"),
		[]string{"strategy"},
	)
	m.staleFallbacks = auto.NewCounter(m.counterOpts("stale_fallbacks_total", "Runs answered with the last published result after a remote failure"))
	m.invariantViolations = auto.NewCounter(m.counterOpts("invariant_violations_total", "Ranked lists rejected before publication"))
	m.notificationsPublish = auto.NewCounterVec(
		m.counterOpts("notifications_total", "Publication notifications by result"),
		[]string{"result"},
	)

	m.storePublishes = auto.NewCounterVec(
		m.counterOpts("store_publishes_total", "Result store publish attempts by backend and result"),
		[]string{"backend", "result"},
	)
	m.storePublishLatency = auto.NewHistogramVec(
		m.histogramOpts("store_publish_latency_milliseconds", "Result store publish latency", msBuckets),
		[]string{"backend"},
	)
	m.storedResults = auto.NewGauge(m.gaugeOpts("stored_results", "Internships with a published result in the memory store"))
	m.repositoryQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("repository_query_latency_milliseconds", "Repository query latency by operation", msBuckets),
		[]string{"operation"},
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Refresh jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Refresh queue capacity"))
	m.queueEnqueue = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Refresh jobs enqueued"))
	m.queueDequeue = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Refresh jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Refresh jobs rejected by a full or closed queue"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Refresh workers running"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Time a worker spends on one refresh job", msBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Refresh jobs that ended in an error"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_seconds", "HTTP request duration", nil),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and kind"),
		[]string{"component", "kind"},
	)

	m.systemMemory = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated by the process"))
	m.systemGoroutines = auto.NewGauge(m.gaugeOpts("system_goroutines", "Goroutines in the process"))
	m.systemGCPause = auto.NewGauge(m.gaugeOpts("system_gc_pause_milliseconds", "Average GC pause time"))
}

// RecordAllocationRun counts a finished run and observes its duration.
func RecordAllocationRun(strategy, outcome string, seconds float64) {
	globalManager.allocationRuns.WithLabelValues(strategy, outcome).Inc()
	globalManager.allocationDuration.WithLabelValues(strategy).Observe(seconds)
}

// IncAllocationInFlight marks a run as started.
func IncAllocationInFlight() {
	globalManager.allocationInFlight.Inc()
}

// DecAllocationInFlight marks a run as finished.
func DecAllocationInFlight() {
	globalManager.allocationInFlight.Dec()
}

// RecordAllocationResult observes the size of a published result.
func RecordAllocationResult(entries, shortlisted int) {
	globalManager.allocationEntries.Observe(float64(entries))
	globalManager.allocationShortlist.Observe(float64(shortlisted))
}

// RecordRemoteFailure counts a failed remote ranking call.
func RecordRemoteFailure(strategy string) {
	globalManager.remoteFailures.WithLabelValues(strategy).Inc()
}

// RecordStaleFallback counts a run answered with the last published result.
func RecordStaleFallback() {
	globalManager.staleFallbacks.Inc()
}

// RecordInvariantViolation counts a ranked list rejected before publication.
func RecordInvariantViolation() {
	globalManager.invariantViolations.Inc()
}

// RecordNotification counts a publication notification attempt.
func RecordNotification(result string) {
	globalManager.notificationsPublish.WithLabelValues(result).Inc()
}

// RecordStorePublish counts a result store publish and observes its latency.
func RecordStorePublish(backend, result string, latencyMs float64) {
	globalManager.storePublishes.WithLabelValues(backend, result).Inc()
	globalManager.storePublishLatency.WithLabelValues(backend).Observe(latencyMs)
}

// UpdateStoredResults sets the number of internships with a published result.
func UpdateStoredResults(count int) {
	globalManager.storedResults.Set(float64(count))
}

// RecordRepositoryQueryLatency records repository query latency.
func RecordRepositoryQueryLatency(operation string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and kind labels.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemory.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutines.Set(float64(count))
}

// RecordSystemGCPauseTime sets the average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPause.Set(ms)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
