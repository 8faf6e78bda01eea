package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the insights
// pipeline.
type Metrics struct {
	LookupRequests  *prometheus.CounterVec // labels: backend={store,provider}
	ResolveRequests *prometheus.CounterVec // labels: backend={store,provider}, outcome={success,error}

	// External provider metrics.
	ProviderRequests *prometheus.CounterVec   // labels: provider, endpoint, outcome={success,error,empty}
	ProviderDuration *prometheus.HistogramVec // labels: provider, endpoint

	// Radius memoization metrics.
	RadiusCache *prometheus.CounterVec // labels: result={hit,miss}

	EventsFetched      prometheus.Counter
	InsightGenerations *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LookupRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_insights",
			Name:      "lookup_requests_total",
			Help:      "Location search requests by resolution backend.",
		}, []string{"backend"}),
		ResolveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_insights",
			Name:      "resolve_requests_total",
			Help:      "Location detail resolutions by backend and outcome.",
		}, []string{"backend", "outcome"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_insights",
			Name:      "provider_requests_total",
			Help:      "External provider API requests by provider, endpoint, and outcome.",
		}, []string{"provider", "endpoint", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "event_insights",
			Name:      "provider_request_duration_seconds",
			Help:      "External provider API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "endpoint"}),
		RadiusCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_insights",
			Name:      "radius_cache_total",
			Help:      "Suggested-radius cache lookups by result.",
		}, []string{"result"}),
		EventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_insights",
			Name:      "events_fetched_total",
			Help:      "Total event records returned by the forecasting provider.",
		}),
		InsightGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_insights",
			Name:      "insight_generations_total",
			Help:      "Demand-insight completions by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.LookupRequests,
		m.ResolveRequests,
		m.ProviderRequests,
		m.ProviderDuration,
		m.RadiusCache,
		m.EventsFetched,
		m.InsightGenerations,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LookupRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "event_insights", Name: "lookup_requests_total"}, []string{"backend"}),
		ResolveRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "event_insights", Name: "resolve_requests_total"}, []string{"backend", "outcome"}),
		ProviderRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "event_insights", Name: "provider_requests_total"}, []string{"provider", "endpoint", "outcome"}),
		ProviderDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "event_insights", Name: "provider_request_duration_seconds"}, []string{"provider", "endpoint"}),
		RadiusCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "event_insights", Name: "radius_cache_total"}, []string{"result"}),
		EventsFetched:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "event_insights", Name: "events_fetched_total"}),
		InsightGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "event_insights", Name: "insight_generations_total"}, []string{"outcome"}),
	}
}
