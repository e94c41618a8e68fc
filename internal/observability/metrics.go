package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RefreshCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_refresh_cycles_total",
			Help: "Full catalog refresh cycles started",
		},
	)

	VendorFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendor_fetch_total",
			Help: "Vendor catalog fetches by outcome",
		},
		[]string{"vendor", "status"},
	)

	VendorFetchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vendor_fetch_seconds",
			Help:    "Vendor catalog fetch duration",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"vendor"},
	)

	ChunkWritesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_chunk_writes_total",
			Help: "Chunk documents written to the store",
		},
	)

	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vendor_cache_hits_total",
			Help: "Vendor fetches served from the TTL cache",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vendor_cache_misses_total",
			Help: "Vendor fetches that had to hit the upstream",
		},
	)
)

func Start(port string) {
	prometheus.MustRegister(
		RefreshCyclesTotal,
		VendorFetchTotal,
		VendorFetchSeconds,
		ChunkWritesTotal,
		CacheHitsTotal,
		CacheMissesTotal,
	)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
