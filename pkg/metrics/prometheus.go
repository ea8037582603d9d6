// Package metrics provides Prometheus metrics for the peereval service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector for the service.
type Manager struct {
	namespace       string
	subsystem       string
	enabled         bool
	refreshInterval time.Duration
	customLabels    map[string]string
	registry        prometheus.Registerer

	// Rotation
	submissions          *prometheus.CounterVec
	submissionDuplicates prometheus.Counter
	assignmentsServed    *prometheus.CounterVec

	// Snapshot
	snapshotMembers    prometheus.Gauge
	snapshotRecords    prometheus.Gauge
	snapshotStale      prometheus.Gauge
	snapshotLoadedUnix prometheus.Gauge
	snapshotReloads    *prometheus.CounterVec
	droppedRows        *prometheus.CounterVec

	// Remote store
	storeRequests *prometheus.CounterVec
	storeLatency  *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager from opts on a fresh registry, which
// GetRegistry then returns. Call it once at startup before serving.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := append([]Option{WithPrometheusRegistry(registry)}, opts...)
	globalManager = NewManager(all...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "peereval",
		subsystem:       "",
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		customLabels:    make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)
	msBuckets := []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submissions_total",
		Help:        "Evaluation submissions by outcome",
		ConstLabels: labels,
	}, []string{"result"})

	m.submissionDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submission_duplicates_total",
		Help:        "Submissions answered from the idempotency cache",
		ConstLabels: labels,
	})

	m.assignmentsServed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assignments_served_total",
		Help:        "Next-target lookups by whether a target was found",
		ConstLabels: labels,
	}, []string{"found"})

	m.snapshotMembers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "snapshot_members",
		Help:        "Members in the current snapshot",
		ConstLabels: labels,
	})

	m.snapshotRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "snapshot_records",
		Help:        "Evaluation records in the current snapshot",
		ConstLabels: labels,
	})

	m.snapshotStale = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "snapshot_stale",
		Help:        "1 when the last reload failed and an older snapshot is being served",
		ConstLabels: labels,
	})

	m.snapshotLoadedUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "snapshot_loaded_unixtime",
		Help:        "Unix time of the last successful reload",
		ConstLabels: labels,
	})

	m.snapshotReloads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "snapshot_reloads_total",
		Help:        "Snapshot reloads by outcome",
		ConstLabels: labels,
	}, []string{"result"})

	m.droppedRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_dropped_rows_total",
		Help:        "Rows skipped while decoding the store payload",
		ConstLabels: labels,
	}, []string{"table"})

	m.storeRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_requests_total",
		Help:        "Remote store round trips by operation and outcome",
		ConstLabels: labels,
	}, []string{"op", "result"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_latency_milliseconds",
		Help:        "Remote store round trip latency in milliseconds",
		Buckets:     msBuckets,
		ConstLabels: labels,
	}, []string{"op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP requests by endpoint, method and status",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     msBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Errors by component and type",
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_type_total",
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Errors by endpoint, method and type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_bytes",
		Help:        "Allocated heap bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutines",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
		ConstLabels: labels,
	})
}

// RecordSubmission counts a submission outcome, e.g. "ok", "invalid_score".
func RecordSubmission(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.submissions.WithLabelValues(result).Inc()
}

// RecordSubmissionDuplicate counts a replayed submission id.
func RecordSubmissionDuplicate() {
	if !globalManager.enabled {
		return
	}
	globalManager.submissionDuplicates.Inc()
}

// RecordAssignment counts a next-target lookup.
func RecordAssignment(found bool) {
	if !globalManager.enabled {
		return
	}
	label := "false"
	if found {
		label = "true"
	}
	globalManager.assignmentsServed.WithLabelValues(label).Inc()
}

// UpdateSnapshot publishes the size and load time of a freshly installed snapshot.
func UpdateSnapshot(members, records int, loadedAt time.Time) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotMembers.Set(float64(members))
	globalManager.snapshotRecords.Set(float64(records))
	globalManager.snapshotLoadedUnix.Set(float64(loadedAt.Unix()))
}

// UpdateSnapshotStale flags whether the served snapshot is stale.
func UpdateSnapshotStale(stale bool) {
	if !globalManager.enabled {
		return
	}
	v := 0.0
	if stale {
		v = 1
	}
	globalManager.snapshotStale.Set(v)
}

// RecordReload counts a reload outcome: "ok" or "error".
func RecordReload(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotReloads.WithLabelValues(result).Inc()
}

// RecordDroppedRows counts rows skipped in table ("members" or "records").
func RecordDroppedRows(table string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.droppedRows.WithLabelValues(table).Add(float64(n))
}

// RecordStoreRequest records one remote store round trip.
func RecordStoreRequest(op, result string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeRequests.WithLabelValues(op, result).Inc()
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
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

// RefreshInterval is how often background updaters should publish gauges.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
