// Package metrics provides Prometheus metrics for the curriculum progress service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Progress
	sessionsCreated    prometheus.Counter
	activeSessions     prometheus.Gauge
	progressMutations  *prometheus.CounterVec
	imports            *prometheus.CounterVec
	eligibilityLatency prometheus.Histogram
	graduations        prometheus.Counter

	// Persistence
	storeLatency   *prometheus.HistogramVec
	storeErrors    *prometheus.CounterVec
	storedSessions prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // exposed on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "curriculum",
		subsystem:        "progress",
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
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts(m.counterOpts(name, help))
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.sessionsCreated = auto.NewCounter(m.counterOpts("sessions_created_total", "Total number of progress sessions created"))
	m.activeSessions = auto.NewGauge(m.gaugeOpts("active_sessions", "Sessions currently held in memory"))
	m.progressMutations = auto.NewCounterVec(
		m.counterOpts("mutations_total", "Progress mutations by operation and outcome"),
		[]string{"operation", "outcome"},
	)
	m.imports = auto.NewCounterVec(
		m.counterOpts("imports_total", "Progress imports by outcome"),
		[]string{"outcome"},
	)
	m.eligibilityLatency = auto.NewHistogram(m.histogramOpts(
		"eligibility_latency_milliseconds", "Time spent evaluating eligibility and statistics",
	))
	m.graduations = auto.NewCounter(m.counterOpts("graduations_total", "Sessions whose last pending course was completed"))

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Progress store latency by backend and operation"),
		[]string{"backend", "operation"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Progress store errors by backend and operation"),
		[]string{"backend", "operation"},
	)
	m.storedSessions = auto.NewGauge(m.gaugeOpts("stored_sessions", "Sessions persisted in the in-memory store"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Pending persistence jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum pending persistence jobs"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size over capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Persistence jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Persistence jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Persistence jobs rejected by the queue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured persistence workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers currently persisting a job"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts(
		"worker_processing_latency_milliseconds", "Time a worker spends on one persistence job",
	))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Persistence jobs that failed"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status code"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
}

// RecordSessionCreated increments the created sessions counter.
func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

// UpdateActiveSessions sets the number of sessions held in memory.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordProgressMutation counts one mutation. Outcome is "ok" or an error kind.
func RecordProgressMutation(operation, outcome string) {
	globalManager.progressMutations.WithLabelValues(operation, outcome).Inc()
}

// RecordImport counts one import attempt.
func RecordImport(outcome string) {
	globalManager.imports.WithLabelValues(outcome).Inc()
}

// RecordEligibilityLatency records an evaluation latency in milliseconds.
func RecordEligibilityLatency(latencyMs float64) {
	globalManager.eligibilityLatency.Observe(latencyMs)
}

// RecordGraduation increments the graduations counter.
func RecordGraduation() {
	globalManager.graduations.Inc()
}

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(backend, operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(backend, operation).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(backend, operation string) {
	globalManager.storeErrors.WithLabelValues(backend, operation).Inc()
}

// UpdateStoredSessions sets the number of sessions in the in-memory store.
func UpdateStoredSessions(count int) {
	globalManager.storedSessions.Set(float64(count))
}

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

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
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

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
