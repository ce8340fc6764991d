// Package metrics provides Prometheus metrics for the jobdb service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the jobdb service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         *prometheus.Registry

	// Interaction logging - what the analytics dashboard is built from
	interactionsEnqueued *prometheus.CounterVec
	interactionsWritten  *prometheus.CounterVec
	interactionsFailed   *prometheus.CounterVec
	viewEndSkipped       prometheus.Counter
	dispatchLatency      prometheus.Histogram

	// Dispatch queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge

	// Catalog and report
	catalogRefreshes    *prometheus.CounterVec
	catalogRows         prometheus.Gauge
	reportRecomputes    *prometheus.CounterVec
	reportRecomputeTime prometheus.Histogram
	activeViewSessions  prometheus.Gauge
	idempotentReplays   prometheus.Counter
	authFailures        *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "jobdb",
		subsystem:        "tracking",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Registry returns the registry the manager's collectors live in.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.interactionsEnqueued = auto.NewCounterVec(m.counterOpts("interactions_enqueued_total",
		"Interaction events accepted by the dispatcher"), []string{"kind"})
	m.interactionsWritten = auto.NewCounterVec(m.counterOpts("interactions_written_total",
		"Interaction events written to the backend"), []string{"kind"})
	m.interactionsFailed = auto.NewCounterVec(m.counterOpts("interactions_failed_total",
		"Interaction events dropped after a failed enqueue or write"), []string{"kind", "stage"})
	m.viewEndSkipped = auto.NewCounter(m.counterOpts("view_end_skipped_total",
		"View-end updates skipped because no view-start record was found"))
	m.dispatchLatency = auto.NewHistogram(m.histogramOpts("dispatch_latency_milliseconds",
		"Backend write latency per interaction event in milliseconds"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the dispatch queues"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of a dispatch queue"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Dispatch queue fill ratio"))
	m.queueEnqueueTotal = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Events enqueued"))
	m.queueDequeueTotal = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Events dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Rejected enqueues"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of dispatch workers"))

	m.catalogRefreshes = auto.NewCounterVec(m.counterOpts("catalog_refresh_total",
		"Employer catalog fetches by outcome"), []string{"outcome"})
	m.catalogRows = auto.NewGauge(m.gaugeOpts("catalog_rows", "Merged rows in the current catalog snapshot"))
	m.reportRecomputes = auto.NewCounterVec(m.counterOpts("report_recompute_total",
		"Aggregation report recomputations by outcome"), []string{"outcome"})
	m.reportRecomputeTime = auto.NewHistogram(m.histogramOpts("report_recompute_milliseconds",
		"Aggregation report recomputation time in milliseconds"))
	m.activeViewSessions = auto.NewGauge(m.gaugeOpts("active_view_sessions", "Mounted view sessions"))
	m.idempotentReplays = auto.NewCounter(m.counterOpts("idempotent_replays_total",
		"Mutations answered from a previously seen idempotency key"))
	m.authFailures = auto.NewCounterVec(m.counterOpts("auth_failures_total",
		"Authentication and authorization failures"), []string{"reason"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and type"), []string{"component", "error_type"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Errors by HTTP endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Allocated heap bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
}

// GetRegistry returns the registry used by the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Interaction metrics.

// RecordInteractionEnqueued counts an event accepted by the dispatcher.
func RecordInteractionEnqueued(kind string) {
	globalManager.interactionsEnqueued.WithLabelValues(kind).Inc()
}

// RecordInteractionWritten counts an event persisted to the backend.
func RecordInteractionWritten(kind string) {
	globalManager.interactionsWritten.WithLabelValues(kind).Inc()
}

// RecordInteractionFailed counts an event dropped at stage "enqueue" or "write".
func RecordInteractionFailed(kind, stage string) {
	globalManager.interactionsFailed.WithLabelValues(kind, stage).Inc()
}

// RecordViewEndSkipped counts view-end updates that found no view-start row.
func RecordViewEndSkipped() {
	globalManager.viewEndSkipped.Inc()
}

// RecordDispatchLatency records backend write latency.
func RecordDispatchLatency(latencyMs float64) {
	globalManager.dispatchLatency.Observe(latencyMs)
}

// Queue metrics.

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
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// Catalog and report metrics.

// RecordCatalogRefresh counts a catalog fetch; outcome is "ok" or "error".
func RecordCatalogRefresh(outcome string) {
	globalManager.catalogRefreshes.WithLabelValues(outcome).Inc()
}

// UpdateCatalogRows sets the size of the current catalog snapshot.
func UpdateCatalogRows(rows int) {
	globalManager.catalogRows.Set(float64(rows))
}

// RecordReportRecompute counts a report computation and its duration.
func RecordReportRecompute(outcome string, durationMs float64) {
	globalManager.reportRecomputes.WithLabelValues(outcome).Inc()
	globalManager.reportRecomputeTime.Observe(durationMs)
}

// UpdateActiveViewSessions sets the number of mounted views.
func UpdateActiveViewSessions(n int) {
	globalManager.activeViewSessions.Set(float64(n))
}

// RecordIdempotentReplay counts a replayed mutation.
func RecordIdempotentReplay() {
	globalManager.idempotentReplays.Inc()
}

// RecordAuthFailure counts a failed sign-in or authorization check.
func RecordAuthFailure(reason string) {
	globalManager.authFailures.WithLabelValues(reason).Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error by HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}
