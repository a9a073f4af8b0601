package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheOps) }

var cacheOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tutor_cache_ops_total",
		Help: "Study-guide cache operations by outcome (hit/miss/error/fill).",
	},
	[]string{"outcome"},
)

func IncCache(outcome string) {
	cacheOps.WithLabelValues(norm(outcome)).Inc()
}
