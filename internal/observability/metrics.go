package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "address_data"

// Metrics holds the Prometheus counters and histograms for upstream queries and seeding.
type Metrics struct {
	// Overpass metrics.
	OverpassRequests *prometheus.CounterVec   // labels: query={cities,city,coordinates,addresses,boundary}, outcome={success,error,empty}
	OverpassRetries  *prometheus.CounterVec   // labels: query
	OverpassDuration *prometheus.HistogramVec // labels: query

	// Lookup cache metrics.
	LookupCache *prometheus.CounterVec // labels: method={city,location}, result={hit,miss}

	// Seeding metrics.
	SeedingAttempts *prometheus.CounterVec // labels: outcome={seeded,rejected,failed}
	DocumentSize    prometheus.Histogram
	SeedingRunning  prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		OverpassRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overpass_requests_total",
			Help:      "Overpass API queries by query kind and outcome.",
		}, []string{"query", "outcome"}),
		OverpassRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overpass_retries_total",
			Help:      "Overpass API retry attempts by query kind.",
		}, []string{"query"}),
		OverpassDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overpass_request_duration_seconds",
			Help:      "Overpass API query duration in seconds, retries included.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 180},
		}, []string{"query"}),
		LookupCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_cache_total",
			Help:      "Lookup cache reads by method and result.",
		}, []string{"method", "result"}),
		SeedingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeding_attempts_total",
			Help:      "City seeding attempts by outcome.",
		}, []string{"outcome"}),
		DocumentSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_size_rows",
			Help:      "Number of address rows per seeded document.",
			Buckets:   prometheus.ExponentialBuckets(50, 2, 12),
		}),
		SeedingRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seeding_running",
			Help:      "1 while a seeding run is in progress, 0 otherwise.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.OverpassRequests,
		m.OverpassRetries,
		m.OverpassDuration,
		m.LookupCache,
		m.SeedingAttempts,
		m.DocumentSize,
		m.SeedingRunning,
	}
}
