// Package metrics provides Prometheus metrics for the flight prediction service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the prediction service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer
	auto             promauto.Factory

	// Predictions
	predictions        *prometheus.CounterVec
	predictionLatency  *prometheus.HistogramVec
	encodingErrors     *prometheus.CounterVec
	predictionCacheHit *prometheus.CounterVec
	predictionCacheMis *prometheus.CounterVec
	predictionCacheErr prometheus.Counter

	// Model registry
	modelCacheHits   prometheus.Counter
	modelCacheMisses prometheus.Counter
	modelLoads       *prometheus.CounterVec
	modelLoadLatency prometheus.Histogram

	// Prediction history and event publishing
	historyWrites  prometheus.Counter
	historyErrors  prometheus.Counter
	historySize    prometheus.Gauge
	eventsPublish  prometheus.Counter
	publishErrors  prometheus.Counter
	chartRequests  prometheus.Counter
	datasetRecords prometheus.Gauge

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "flightml",
		subsystem:        "prediction",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.auto = promauto.With(m.registry)
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return m.auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return m.auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return m.auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return m.auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return m.auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.predictions = m.counterVec("predictions_total", "Predictions served by task and outcome label", "task", "label")
	m.predictionLatency = m.histogramVec("latency_milliseconds", "End-to-end prediction latency in milliseconds", "task")
	m.encodingErrors = m.counterVec("encoding_errors_total", "Requests rejected while encoding features", "task", "kind")
	m.predictionCacheHit = m.counterVec("cache_hits_total", "Predictions answered from the result cache", "task")
	m.predictionCacheMis = m.counterVec("cache_misses_total", "Predictions that had to call the model", "task")
	m.predictionCacheErr = m.counter("cache_errors_total", "Result cache reads or writes that failed")

	m.modelCacheHits = m.counter("model_cache_hits_total", "Model lookups served from the in-process model cache")
	m.modelCacheMisses = m.counter("model_cache_misses_total", "Model lookups that had to read an artifact")
	m.modelLoads = m.counterVec("model_loads_total", "Artifact loads by task and outcome", "task", "outcome")
	m.modelLoadLatency = m.histogram("model_load_latency_milliseconds", "Artifact read and decode latency in milliseconds", m.histogramBuckets)

	m.historyWrites = m.counter("history_writes_total", "Predictions written to the history store")
	m.historyErrors = m.counter("history_errors_total", "History store writes that failed")
	m.historySize = m.gauge("history_size", "Predictions currently held by the history store")
	m.eventsPublish = m.counter("events_published_total", "Prediction events published to the broker")
	m.publishErrors = m.counter("publish_errors_total", "Prediction events the broker rejected")
	m.chartRequests = m.counter("chart_requests_total", "Price distribution charts rendered")
	m.datasetRecords = m.gauge("dataset_records", "Rows in the loaded price dataset")

	m.queueSize = m.gauge("queue_size", "Current size of the event queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of events enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of events dropped on a full queue")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Time an event waited in the queue in milliseconds", m.histogramBuckets)

	m.workerCount = m.gauge("worker_count", "Current number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers handling an event")
	m.workerIdleCount = m.gauge("worker_idle_count", "Number of idle workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of worker errors")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordPrediction counts one served prediction.
func RecordPrediction(task, label string) {
	globalManager.predictions.WithLabelValues(task, label).Inc()
}

// RecordPredictionLatency records end-to-end prediction latency.
func RecordPredictionLatency(task string, latencyMs float64) {
	globalManager.predictionLatency.WithLabelValues(task).Observe(latencyMs)
}

// RecordEncodingError counts a request rejected by validation or encoding.
func RecordEncodingError(task, kind string) {
	globalManager.encodingErrors.WithLabelValues(task, kind).Inc()
}

func RecordPredictionCacheHit(task string) {
	globalManager.predictionCacheHit.WithLabelValues(task).Inc()
}

func RecordPredictionCacheMiss(task string) {
	globalManager.predictionCacheMis.WithLabelValues(task).Inc()
}

func RecordPredictionCacheError() {
	globalManager.predictionCacheErr.Inc()
}

// Model registry.

func RecordModelCacheHit() {
	globalManager.modelCacheHits.Inc()
}

func RecordModelCacheMiss() {
	globalManager.modelCacheMisses.Inc()
}

// RecordModelLoad counts an artifact load; outcome is "ok" or "error".
func RecordModelLoad(task, outcome string) {
	globalManager.modelLoads.WithLabelValues(task, outcome).Inc()
}

func RecordModelLoadLatency(latencyMs float64) {
	globalManager.modelLoadLatency.Observe(latencyMs)
}

// History and publishing.

func RecordHistoryWrite() {
	globalManager.historyWrites.Inc()
}

func RecordHistoryError() {
	globalManager.historyErrors.Inc()
}

// UpdateHistorySize sets the number of predictions the history store holds.
func UpdateHistorySize(size int) {
	globalManager.historySize.Set(float64(size))
}

func RecordPublish() {
	globalManager.eventsPublish.Inc()
}

func RecordPublishError() {
	globalManager.publishErrors.Inc()
}

func RecordChartRequest() {
	globalManager.chartRequests.Inc()
}

// UpdateDatasetRecords sets the row count of the loaded price dataset.
func UpdateDatasetRecords(rows int) {
	globalManager.datasetRecords.Set(float64(rows))
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records how long an event waited in the queue.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Workers.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
