package observability

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var scenarioLabel atomic.Value

func init() {
	scenarioLabel.Store("direct")
}

func SetScenario(s string) {
	if s == "" {
		s = "direct"
	}
	scenarioLabel.Store(s)
}

func getScenario() string {
	if v := scenarioLabel.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "direct"
}

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status", "scenario"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status", "scenario"},
	)

	upstreamLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of mart service calls in seconds, by call type.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~160s
		},
		[]string{"call", "scenario"},
	)

	queryResultRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "query_result_rows",
			Help:    "Rows returned per executed query.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12), // 1 to ~4M
		},
	)

	catalogCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_results_total",
			Help: "Catalog cache lookups by catalog kind and outcome.",
		},
		[]string{"kind", "outcome", "scenario"},
	)

	queryEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_events_total",
			Help: "Query usage events by publish result.",
		},
		[]string{"result"},
	)

	hotDatasetsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hot_datasets",
			Help: "Number of datasets currently tracked by the hotness model.",
		},
		[]string{"tracker"},
	)
)

// Init registers the service collectors with reg. The collectors exist
// and record observations regardless, so instrumented code never needs
// to check whether metrics are enabled. Registering the same collectors
// with one registry twice panics; call Init once per registry.
func Init(reg prometheus.Registerer, enabled bool) {
	if reg == nil || !enabled {
		return
	}
	reg.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		upstreamLatencySeconds,
		queryResultRows,
		catalogCacheResults,
		queryEventsTotal,
		hotDatasetsGauge,
	)
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	s := getScenario()
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st, s).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st, s).Observe(durationSeconds)
}

// ObserveUpstreamLatency records one mart service call. call is the
// request type: registry, datasets, configuration or query.
func ObserveUpstreamLatency(call string, durationSeconds float64) {
	s := getScenario()
	upstreamLatencySeconds.WithLabelValues(call, s).Observe(durationSeconds)
}

func ObserveQueryRows(rows int) {
	if rows < 0 {
		return
	}
	queryResultRows.Observe(float64(rows))
}

func IncCatalogCacheHit(kind string) {
	catalogCacheResults.WithLabelValues(kind, "hit", getScenario()).Inc()
}

func IncCatalogCacheMiss(kind string) {
	catalogCacheResults.WithLabelValues(kind, "miss", getScenario()).Inc()
}

func IncQueryEvent(result string) {
	queryEventsTotal.WithLabelValues(result).Inc()
}

func SetHotDatasetsGauge(tracker string, n int) {
	hotDatasetsGauge.WithLabelValues(tracker).Set(float64(n))
}
