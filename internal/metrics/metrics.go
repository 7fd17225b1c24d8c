// Package metrics holds the Prometheus collectors for search, caching,
// the corpus and the HTTP layer. Collectors register with the default
// registry, which /metrics serves.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchRequestsTotal counts searches by how they were served
	// ("computed" or "cache").
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_search_requests_total",
			Help: "Total number of recipe searches",
		},
		[]string{"source"},
	)

	// SearchDuration tracks end-to-end pipeline latency for computed searches.
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_search_duration_seconds",
			Help:    "Duration of computed recipe searches in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	CacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_search_cache_total",
			Help: "Query cache lookups by result",
		},
		[]string{"result"},
	)

	CacheStoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_search_cache_store_errors_total",
			Help: "Shared cache store failures by operation",
		},
		[]string{"op"},
	)

	// CorpusRecipes is the size of the currently published corpus.
	CorpusRecipes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_corpus_recipes",
			Help: "Number of recipes in the published corpus",
		},
	)

	CorpusReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_corpus_reloads_total",
			Help: "Corpus rebuilds by outcome",
		},
		[]string{"outcome"},
	)

	MealPlanFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_mealplan_failures_total",
			Help: "Meal plans that could not be generated, by failing constraint",
		},
		[]string{"constraint"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// RecordSearch records one search. Cached searches do not feed the latency
// histogram.
func RecordSearch(cached bool, d time.Duration) {
	if cached {
		SearchRequestsTotal.WithLabelValues("cache").Inc()
		CacheTotal.WithLabelValues("hit").Inc()
		return
	}
	SearchRequestsTotal.WithLabelValues("computed").Inc()
	CacheTotal.WithLabelValues("miss").Inc()
	SearchDuration.Observe(d.Seconds())
}

// RecordCorpusReload records a corpus rebuild and, on success, its size.
func RecordCorpusReload(size int, err error) {
	if err != nil {
		CorpusReloadsTotal.WithLabelValues("error").Inc()
		CorpusRecipes.Set(0)
		return
	}
	CorpusReloadsTotal.WithLabelValues("ok").Inc()
	CorpusRecipes.Set(float64(size))
}

func RecordMealPlanFailure(constraint string) {
	MealPlanFailuresTotal.WithLabelValues(constraint).Inc()
}

func RecordCacheStoreError(op string) {
	CacheStoreErrorsTotal.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records a finished request. route is the matched route
// template, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
