// Package metrics provides Prometheus metrics for the hoopstate service.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	coverageBuckets  []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Game pipeline
	gamesProcessed        *prometheus.CounterVec
	gamesDuplicate        prometheus.Counter
	gameDuration          prometheus.Histogram
	eventsProcessed       prometheus.Counter
	eventsUnparsed        *prometheus.CounterVec
	parseCoverage         prometheus.Histogram
	lineupInconsistencies prometheus.Counter
	integrityFailures     prometheus.Counter
	resultsStored         prometheus.Gauge

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

	// Sinks
	sinkWrites *prometheus.CounterVec
	sinkErrors *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	streamClients       prometheus.Gauge

	// Errors and system
	errorsByComponent    *prometheus.CounterVec
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hoopstate",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		coverageBuckets:  []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 0.99, 1},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.gamesProcessed = m.counterVec("games_processed_total", "Games finished, by terminal status", "status")
	m.gamesDuplicate = m.counter("games_duplicate_total", "Game submissions rejected as duplicates")
	m.gameDuration = m.histogram("game_processing_duration_milliseconds", "Wall time to process one game", m.histogramBuckets)
	m.eventsProcessed = m.counter("events_processed_total", "Raw play records turned into events")
	m.eventsUnparsed = m.counterVec("events_unparsed_total", "Records demoted to unparsed, by reason", "reason")
	m.parseCoverage = m.histogram("parse_coverage_ratio", "Share of parsed records per game", m.coverageBuckets)
	m.lineupInconsistencies = m.counter("lineup_inconsistencies_total", "Rejected or partially applied lineup changes")
	m.integrityFailures = m.counter("integrity_failures_total", "Games whose possession or stint checks failed")
	m.resultsStored = m.gauge("results_stored", "Game results held in the in-memory store")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the game queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the game queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Jobs accepted by the queue")
	m.queueDequeued = m.counter("queue_dequeue_total", "Jobs taken from the queue")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected by a full or closed queue")

	m.workerCount = m.gauge("worker_count", "Configured game workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently processing a game")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time from dequeue to sink write", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs a worker could not complete")

	m.sinkWrites = m.counterVec("sink_writes_total", "Results written, by sink", "sink")
	m.sinkErrors = m.counterVec("sink_errors_total", "Result writes that failed, by sink", "sink")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.streamClients = m.gauge("stream_clients", "Open snapshot stream connections")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")
	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Live goroutines")
}

// RecordGameProcessed counts a finished game and its processing time.
func RecordGameProcessed(status string, durationMs float64) {
	globalManager.gamesProcessed.WithLabelValues(status).Inc()
	globalManager.gameDuration.Observe(durationMs)
}

// RecordGameDuplicate counts a rejected duplicate submission.
func RecordGameDuplicate() {
	globalManager.gamesDuplicate.Inc()
}

// RecordEventsProcessed adds n processed records.
func RecordEventsProcessed(n int) {
	globalManager.eventsProcessed.Add(float64(n))
}

// RecordEventUnparsed counts one unparsed record.
func RecordEventUnparsed(reason string) {
	globalManager.eventsUnparsed.WithLabelValues(reason).Inc()
}

// RecordParseCoverage observes a game's parsed share in 0..1.
func RecordParseCoverage(ratio float64) {
	globalManager.parseCoverage.Observe(ratio)
}

// RecordLineupInconsistencies adds n lineup inconsistencies.
func RecordLineupInconsistencies(n int) {
	globalManager.lineupInconsistencies.Add(float64(n))
}

// RecordIntegrityFailure counts a failed integrity check.
func RecordIntegrityFailure() {
	globalManager.integrityFailures.Inc()
}

// UpdateResultsStored sets the number of stored results.
func UpdateResultsStored(n int) {
	globalManager.resultsStored.Set(float64(n))
}

// UpdateQueueSize sets the current queue length.
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

// WorkerStarted and WorkerFinished track in-flight games.
func WorkerStarted()  { globalManager.workerActiveCount.Inc() }
func WorkerFinished() { globalManager.workerActiveCount.Dec() }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordSinkWrite counts a successful write to a named sink.
func RecordSinkWrite(sink string) {
	globalManager.sinkWrites.WithLabelValues(sink).Inc()
}

// RecordSinkError counts a failed write to a named sink.
func RecordSinkError(sink string) {
	globalManager.sinkErrors.WithLabelValues(sink).Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// StreamOpened and StreamClosed track websocket clients.
func StreamOpened() { globalManager.streamClients.Inc() }
func StreamClosed() { globalManager.streamClients.Dec() }

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemStats samples heap usage and goroutine count.
func UpdateSystemStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
