// Package metrics provides Prometheus metrics for the pitchledger service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ledger metrics
	matchesIngested  prometheus.Counter
	rowsSkipped      *prometheus.CounterVec
	ratingsAppended  prometheus.Counter
	ingestBatches    prometheus.Counter
	ingestDuration   prometheus.Histogram
	recomputeRuns    prometheus.Counter
	recomputeLastN   prometheus.Gauge
	recomputeSeconds prometheus.Histogram
	runsRejected     prometheus.Counter

	// Store gauges
	totalTeams   prometheus.Gauge
	totalMatches prometheus.Gauge
	totalRatings prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager on a custom registry so the default Go collectors
// never leak into scrape output.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton metrics manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitchledger",
		subsystem:        "ledger",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.matchesIngested = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_ingested_total",
		Help:      "Matches added to the ledger through ingestion batches.",
	})
	m.rowsSkipped = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_skipped_total",
		Help:      "Ingestion rows skipped, labelled by reason.",
	}, []string{"reason"})
	m.ratingsAppended = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ratings_appended_total",
		Help:      "Rating entries appended to the ledger.",
	})
	m.ingestBatches = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_batches_total",
		Help:      "Completed ingestion batches.",
	})
	m.ingestDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_batch_duration_seconds",
		Help:      "Wall time of one ingestion batch.",
		Buckets:   m.histogramBuckets,
	})
	m.recomputeRuns = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_runs_total",
		Help:      "Completed full ledger recomputations.",
	})
	m.recomputeLastN = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_last_processed",
		Help:      "Matches replayed by the most recent recompute.",
	})
	m.recomputeSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_duration_seconds",
		Help:      "Wall time of one full recompute.",
		Buckets:   m.histogramBuckets,
	})
	m.runsRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_rejected_total",
		Help:      "Ingest or recompute attempts rejected while another run held the lock.",
	})

	m.totalTeams = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_total",
		Help:      "Teams tracked in the store.",
	})
	m.totalMatches = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_total",
		Help:      "Matches persisted in the store.",
	})
	m.totalRatings = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_entries_total",
		Help:      "Rating entries in the ledger.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by endpoint, method and status.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// Package-level helpers against the global manager.

func RecordMatchIngested() { globalManager.matchesIngested.Inc() }

func RecordRatingsAppended(n int) {
	globalManager.ratingsAppended.Add(float64(n))
}

func RecordRowSkipped(reason string) {
	globalManager.rowsSkipped.WithLabelValues(reason).Inc()
}

func RecordIngestBatch(seconds float64) {
	globalManager.ingestBatches.Inc()
	globalManager.ingestDuration.Observe(seconds)
}

func RecordRecompute(processed int, seconds float64) {
	globalManager.recomputeRuns.Inc()
	globalManager.recomputeLastN.Set(float64(processed))
	globalManager.recomputeSeconds.Observe(seconds)
}

func RecordRunRejected() { globalManager.runsRejected.Inc() }

func UpdateTotalTeams(n int64)   { globalManager.totalTeams.Set(float64(n)) }
func UpdateTotalMatches(n int64) { globalManager.totalMatches.Set(float64(n)) }
func UpdateTotalRatings(n int64) { globalManager.totalRatings.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(seconds)
}

// GetRegistry exposes the custom registry for the scrape handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
