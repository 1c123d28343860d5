// Package metrics registers the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yaytapi_cache_hits_total",
		Help: "Fresh cache reads served per collection.",
	}, []string{"collection"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yaytapi_cache_misses_total",
		Help: "Cache reads that missed per collection.",
	}, []string{"collection"})

	CacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yaytapi_cache_evictions_total",
		Help: "Stale cache entries evicted on read per collection.",
	}, []string{"collection"})

	UpstreamCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yaytapi_upstream_calls_total",
		Help: "Innertube and origin calls issued per endpoint.",
	}, []string{"endpoint"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yaytapi_http_request_duration_seconds",
		Help:    "HTTP handler latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)
