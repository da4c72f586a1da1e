package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheOpsTotal) }

var cacheOpsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "snapshot_cache_ops_total",
		Help: "Task snapshot cache operations, labeled by op and result.",
	},
	[]string{"op", "result"}, // op: 'get', 'store', 'delete'; result: 'hit', 'miss', 'ok', 'error'
)

func IncCacheOp(op, result string) {
	cacheOpsTotal.WithLabelValues(norm(op), norm(result)).Inc()
}
