package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipedex",
			Name:      "search_requests_total",
			Help:      "Total number of search queries",
		},
		[]string{"mode", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recipedex",
			Name:      "search_duration_seconds",
			Help:      "Search query duration in seconds, cache lookups included",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recipedex",
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	ScoringFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recipedex",
			Name:      "scoring_failures_total",
			Help:      "Recipes dropped from a ranking because scoring them failed",
		},
	)

	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipedex",
			Name:      "query_cache_total",
			Help:      "Query cache hits, misses and errors",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	CorpusRecipes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "recipedex",
			Name:      "corpus_recipes",
			Help:      "Number of recipes in the loaded corpus",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(ScoringFailuresTotal)
	prometheus.MustRegister(QueryCacheTotal)
	prometheus.MustRegister(CorpusRecipes)
	searchMetricsRegistered = true
}
