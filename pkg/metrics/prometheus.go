// Package metrics provides Prometheus metrics for the ekiden records service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the records service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Records
	resultsCreated      prometheus.Counter
	resultsUpdated      prometheus.Counter
	resultsDeleted      prometheus.Counter
	importRows          *prometheus.CounterVec
	durationParseErrors prometheus.Counter
	duplicateSubmits    prometheus.Counter
	leaderboardQueries  *prometheus.CounterVec
	authFailures        *prometheus.CounterVec

	// Totals
	membersTotal prometheus.Gauge
	resultsTotal prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository
	repositoryQueryLatency  *prometheus.HistogramVec
	repositoryUpdateLatency *prometheus.HistogramVec

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
		namespace:        "ekiden",
		subsystem:        "records",
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

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.resultsCreated = m.counter("results_created_total", "Total number of race results stored")
	m.resultsUpdated = m.counter("results_updated_total", "Total number of race results edited by their owner")
	m.resultsDeleted = m.counter("results_deleted_total", "Total number of race results deleted by their owner")
	m.importRows = m.counterVec("import_rows_total", "Bulk import rows by outcome", "outcome")
	m.durationParseErrors = m.counter("duration_parse_failures_total", "Time strings rejected by the duration codec")
	m.duplicateSubmits = m.counter("submissions_duplicate_total", "Submissions dropped by idempotency key")
	m.leaderboardQueries = m.counterVec("leaderboard_queries_total", "Leaderboard reads by bucket and mode", "bucket", "mode")
	m.authFailures = m.counterVec("auth_failures_total", "Rejected sign-ups, logins and tokens", "reason")

	m.membersTotal = m.gauge("members_total", "Registered members")
	m.resultsTotal = m.gauge("results_total", "Stored race results")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.repositoryQueryLatency = m.histogramVec("repository_query_latency_milliseconds", "Latency of repository reads", "op")
	m.repositoryUpdateLatency = m.histogramVec("repository_update_latency_milliseconds", "Latency of repository writes", "op")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordResultCreated adds n stored results.
func RecordResultCreated(n int) {
	globalManager.resultsCreated.Add(float64(n))
}

// RecordResultUpdated increments the edited results counter.
func RecordResultUpdated() {
	globalManager.resultsUpdated.Inc()
}

// RecordResultDeleted increments the deleted results counter.
func RecordResultDeleted() {
	globalManager.resultsDeleted.Inc()
}

// RecordImportRows records imported and skipped rows of one bulk import.
func RecordImportRows(imported, skipped int) {
	globalManager.importRows.WithLabelValues("imported").Add(float64(imported))
	globalManager.importRows.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordDurationParseFailure increments the codec failure counter.
func RecordDurationParseFailure() {
	globalManager.durationParseErrors.Inc()
}

// RecordDuplicateSubmission increments the idempotent replay counter.
func RecordDuplicateSubmission() {
	globalManager.duplicateSubmits.Inc()
}

// RecordLeaderboardQuery counts a leaderboard read.
func RecordLeaderboardQuery(bucket, mode string) {
	globalManager.leaderboardQueries.WithLabelValues(bucket, mode).Inc()
}

// RecordAuthFailure counts a rejected authentication attempt.
func RecordAuthFailure(reason string) {
	globalManager.authFailures.WithLabelValues(reason).Inc()
}

// UpdateMembersTotal sets the registered member count.
func UpdateMembersTotal(n int) {
	globalManager.membersTotal.Set(float64(n))
}

// UpdateResultsTotal sets the stored result count.
func UpdateResultsTotal(n int) {
	globalManager.resultsTotal.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRepositoryQueryLatency records the latency of a read in milliseconds.
func RecordRepositoryQueryLatency(op string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordRepositoryUpdateLatency records the latency of a write in milliseconds.
func RecordRepositoryUpdateLatency(op string, latencyMs float64) {
	globalManager.repositoryUpdateLatency.WithLabelValues(op).Observe(latencyMs)
}

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
