package services

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "The total number of lookups served from either tier",
	})

	cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "The total number of lookups that found no live record",
	})

	cacheSetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_sets_total",
		Help: "The total number of cache writes",
	})

	cacheSweepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_sweeps_total",
		Help: "The total number of completed expiration sweeps",
	})

	cacheSweepRemovedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_sweep_removed_total",
		Help: "The total number of record files removed by sweeps",
	})
)

func init() {
	prometheus.MustRegister(cacheHitsTotal)
	prometheus.MustRegister(cacheMissesTotal)
	prometheus.MustRegister(cacheSetsTotal)
	prometheus.MustRegister(cacheSweepsTotal)
	prometheus.MustRegister(cacheSweepRemovedTotal)
}
