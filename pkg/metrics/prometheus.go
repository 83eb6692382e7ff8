// Package metrics provides Prometheus metrics for the UPG grade calculator.
package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the calculator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Document metrics
	mutations      *prometheus.CounterVec
	subjectsTotal  prometheus.Gauge
	overallAverage prometheus.Gauge
	imports        *prometheus.CounterVec
	exports        *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Persist queue metrics
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Writer metrics
	persistWrites       prometheus.Counter
	persistWriteErrors  prometheus.Counter
	persistStaleSkipped prometheus.Counter
	persistLatency      prometheus.Histogram

	// Store metrics
	storeOperations *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec

	// Backup metrics
	backups        prometheus.Counter
	backupErrors   prometheus.Counter
	backupLastUnix prometheus.Gauge

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// latencyBucketsMs covers sub-millisecond memory writes up to slow disk or
// database writes.
var latencyBucketsMs = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000} //nolint:gochecknoglobals // bucket layout

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "upg",
		subsystem:        "calculator",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.mutations = m.counterVec("mutations_total", "Document mutations applied, by operation", "op")
	m.subjectsTotal = m.gauge("subjects_total", "Number of subjects in the document")
	m.overallAverage = m.gauge("overall_average_grade", "Mean grade across graded subjects (NaN when there are none)")
	m.imports = m.counterVec("imports_total", "Documents imported, by format", "format")
	m.exports = m.counterVec("exports_total", "Documents exported, by format", "format")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.queueCapacity = m.gauge("persist_queue_capacity", "Capacity of the persist queue")
	m.queueSize = m.gauge("persist_queue_size", "Snapshots waiting in the persist queue")
	m.queueEnqueued = m.counter("persist_queue_enqueued_total", "Snapshots enqueued for persistence")
	m.queueDequeued = m.counter("persist_queue_dequeued_total", "Snapshots taken off the persist queue")
	m.queueEnqueueErrors = m.counter("persist_queue_enqueue_errors_total", "Snapshots that could not be enqueued")

	m.persistWrites = m.counter("persist_writes_total", "Snapshots written to the store")
	m.persistWriteErrors = m.counter("persist_write_errors_total", "Snapshot writes that failed")
	m.persistStaleSkipped = m.counter("persist_stale_skipped_total", "Snapshots skipped because a newer one was already written")
	m.persistLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_write_latency_milliseconds",
		Help:      "Latency of snapshot writes in milliseconds",
		Buckets:   latencyBucketsMs,
	})

	m.storeOperations = m.counterVec("store_operations_total", "Store operations, by driver and operation",
		"driver", "op")
	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Latency of store operations in milliseconds",
		Buckets:   latencyBucketsMs,
	}, []string{"driver", "op"})

	m.backups = m.counter("backups_total", "Backups written")
	m.backupErrors = m.counter("backup_errors_total", "Backups that failed")
	m.backupLastUnix = m.gauge("backup_last_unix_seconds", "Unix time of the last successful backup")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type",
		"component", "error_type")
}

// RecordMutation increments the mutation counter for an operation.
func RecordMutation(op string) {
	globalManager.mutations.WithLabelValues(op).Inc()
}

// UpdateSubjectsTotal sets the number of subjects.
func UpdateSubjectsTotal(count int) {
	globalManager.subjectsTotal.Set(float64(count))
}

// UpdateOverallAverage sets the overall average grade.
func UpdateOverallAverage(avg float64) {
	globalManager.overallAverage.Set(avg)
}

// ClearOverallAverage marks the overall average as undefined (NaN) when no
// subject is graded.
func ClearOverallAverage() {
	globalManager.overallAverage.Set(math.NaN())
}

// RecordImport increments the import counter for a format.
func RecordImport(format string) {
	globalManager.imports.WithLabelValues(format).Inc()
}

// RecordExport increments the export counter for a format.
func RecordExport(format string) {
	globalManager.exports.WithLabelValues(format).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueCapacity sets the persist queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current persist queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
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

// RecordPersistWrite records a successful snapshot write.
func RecordPersistWrite(latencyMs float64) {
	globalManager.persistWrites.Inc()
	globalManager.persistLatency.Observe(latencyMs)
}

// RecordPersistWriteError increments the failed write counter.
func RecordPersistWriteError() {
	globalManager.persistWriteErrors.Inc()
}

// RecordPersistStale increments the stale snapshot counter.
func RecordPersistStale() {
	globalManager.persistStaleSkipped.Inc()
}

// RecordStoreOperation records one store operation and its latency.
func RecordStoreOperation(driver, op string, latencyMs float64) {
	globalManager.storeOperations.WithLabelValues(driver, op).Inc()
	globalManager.storeLatency.WithLabelValues(driver, op).Observe(latencyMs)
}

// RecordBackup records a successful backup at the given unix time.
func RecordBackup(unix int64) {
	globalManager.backups.Inc()
	globalManager.backupLastUnix.Set(float64(unix))
}

// RecordBackupError increments the failed backup counter.
func RecordBackupError() {
	globalManager.backupErrors.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
