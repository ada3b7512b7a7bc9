// Package metrics provides Prometheus metrics for the curbcast service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the curbcast service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Snapshot cache
	cacheHits              *prometheus.CounterVec
	cacheMisses            *prometheus.CounterVec
	cacheCoalesced         *prometheus.CounterVec
	cacheStaleServed       *prometheus.CounterVec
	cacheStaleWriteDropped *prometheus.CounterVec
	cacheEntries           prometheus.Gauge

	// Upstream feed
	fetchResults      *prometheus.CounterVec
	fetchLatency      *prometheus.HistogramVec
	feedRecords       *prometheus.CounterVec
	feedMalformed     *prometheus.CounterVec
	feedRateLimited   prometheus.Counter
	filteredByReason  *prometheus.CounterVec
	snapshotFlights   *prometheus.GaugeVec
	snapshotAgeSecond *prometheus.GaugeVec

	// Demand signals
	surgeLevel *prometheus.GaugeVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "curbcast",
		subsystem:        "demand",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.cacheHits = m.counterVec("cache_hits_total", "Snapshot lookups served from a fresh entry", "key")
	m.cacheMisses = m.counterVec("cache_misses_total", "Snapshot lookups that required a fetch", "key")
	m.cacheCoalesced = m.counterVec("cache_coalesced_total", "Callers whose fetch was shared with other callers", "key")
	m.cacheStaleServed = m.counterVec("cache_stale_served_total", "Expired snapshots served after a failed refresh", "key")
	m.cacheStaleWriteDropped = m.counterVec("cache_stale_write_dropped_total", "Completed fetches discarded because a newer snapshot was already stored", "key")
	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_entries",
		Help:        "Snapshots currently retained, fresh or stale",
		ConstLabels: m.constLabels,
	})

	m.fetchResults = m.counterVec("fetch_results_total", "Upstream schedule fetches by outcome", "key", "outcome")
	m.fetchLatency = m.histogramVec("fetch_latency_milliseconds", "Upstream schedule fetch latency in milliseconds",
		[]float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}, "key")
	m.feedRecords = m.counterVec("feed_records_total", "Feed records decoded", "direction")
	m.feedMalformed = m.counterVec("feed_records_malformed_total", "Feed records skipped because they could not be decoded", "direction")
	m.feedRateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feed_rate_limited_total",
		Help:        "Fetches refused by the upstream quota or the local limiter",
		ConstLabels: m.constLabels,
	})
	m.filteredByReason = m.counterVec("filtered_records_total", "Records dropped by the passenger filter", "reason")
	m.snapshotFlights = m.gaugeVec("snapshot_flights", "Flights in the latest stored snapshot", "key")
	m.snapshotAgeSecond = m.gaugeVec("snapshot_age_seconds", "Age of the snapshot most recently served", "key")

	m.surgeLevel = m.gaugeVec("surge_level", "Last computed surge level (0 low, 1 moderate, 2 high)", "airport")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// Cache Metrics Functions.

// RecordCacheHit counts a lookup served from a fresh snapshot.
func RecordCacheHit(key string) {
	globalManager.cacheHits.WithLabelValues(key).Inc()
}

// RecordCacheMiss counts a lookup that needed a fetch.
func RecordCacheMiss(key string) {
	globalManager.cacheMisses.WithLabelValues(key).Inc()
}

// RecordCacheCoalesced counts a caller that shared another caller's fetch.
func RecordCacheCoalesced(key string) {
	globalManager.cacheCoalesced.WithLabelValues(key).Inc()
}

// RecordStaleServed counts an expired snapshot served in degraded mode.
func RecordStaleServed(key string) {
	globalManager.cacheStaleServed.WithLabelValues(key).Inc()
}

// RecordStaleWriteDropped counts a fetch result discarded for being older
// than the stored snapshot.
func RecordStaleWriteDropped(key string) {
	globalManager.cacheStaleWriteDropped.WithLabelValues(key).Inc()
}

// UpdateCacheEntries sets the number of retained snapshots.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// Feed Metrics Functions.

// RecordFetch records an upstream fetch outcome and its latency.
func RecordFetch(key, outcome string, latencyMs float64) {
	globalManager.fetchResults.WithLabelValues(key, outcome).Inc()
	globalManager.fetchLatency.WithLabelValues(key).Observe(latencyMs)
}

// RecordFeedRecords counts decoded feed records.
func RecordFeedRecords(direction string, count int) {
	globalManager.feedRecords.WithLabelValues(direction).Add(float64(count))
}

// RecordMalformedRecord counts a feed record skipped during decoding.
func RecordMalformedRecord(direction string) {
	globalManager.feedMalformed.WithLabelValues(direction).Inc()
}

// RecordRateLimited counts a fetch refused for quota reasons.
func RecordRateLimited() {
	globalManager.feedRateLimited.Inc()
}

// RecordFiltered counts a record dropped by the passenger filter.
func RecordFiltered(reason string) {
	globalManager.filteredByReason.WithLabelValues(reason).Inc()
}

// UpdateSnapshotFlights sets the flight count of the latest snapshot.
func UpdateSnapshotFlights(key string, count int) {
	globalManager.snapshotFlights.WithLabelValues(key).Set(float64(count))
}

// UpdateSnapshotAge sets the age in seconds of the snapshot just served.
func UpdateSnapshotAge(key string, seconds float64) {
	globalManager.snapshotAgeSecond.WithLabelValues(key).Set(seconds)
}

// UpdateSurgeLevel records the latest surge level for an airport.
func UpdateSurgeLevel(airport string, level int) {
	globalManager.surgeLevel.WithLabelValues(airport).Set(float64(level))
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

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
