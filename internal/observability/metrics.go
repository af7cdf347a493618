package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the aggregation pipeline.
type Metrics struct {
	// SearchesTotal counts provider searches by source and outcome
	// (ok, error, empty).
	SearchesTotal *prometheus.CounterVec

	// SearchDuration observes per-provider search latency.
	SearchDuration *prometheus.HistogramVec

	// AggregateSearches counts top-level aggregate searches by category.
	AggregateSearches *prometheus.CounterVec

	// DedupDropped counts items dropped by the dedup pass.
	DedupDropped prometheus.Counter

	// InFlight gauges currently running provider searches.
	InFlight prometheus.Gauge
}

// NewMetrics registers the collectors on the given registerer. Passing
// nil uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aggregator",
			Name:      "provider_searches_total",
			Help:      "Provider searches by source and outcome.",
		}, []string{"source", "outcome"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aggregator",
			Name:      "provider_search_duration_seconds",
			Help:      "Provider search latency by source.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		AggregateSearches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aggregator",
			Name:      "aggregate_searches_total",
			Help:      "Top-level aggregate searches by category.",
		}, []string{"category"}),
		DedupDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "aggregator",
			Name:      "dedup_dropped_total",
			Help:      "Items dropped as cross-source duplicates.",
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "aggregator",
			Name:      "provider_searches_in_flight",
			Help:      "Provider searches currently running.",
		}),
	}
}
