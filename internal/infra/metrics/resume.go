package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(resumesTotal, creditBlocksTotal, retriesTotal) }

var resumesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_resumes_total",
		Help: "Resume attempts, labeled by classified outcome.",
	},
	[]string{"outcome"}, // 'resumed', 'needs_configuration', 'credit_blocked', 'error'
)

var creditBlocksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_credit_blocks_total",
		Help: "Insufficient-credit rejections, labeled by originating route.",
	},
	[]string{"route"},
)

var retriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_task_retries_total",
		Help: "Explicit task retry triggers, labeled by result.",
	},
	[]string{"result"}, // 'ok', 'error'
)

func IncResume(outcome string) {
	resumesTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncCreditBlock(route string) {
	creditBlocksTotal.WithLabelValues(norm(route)).Inc()
}

func IncRetry(result string) {
	retriesTotal.WithLabelValues(norm(result)).Inc()
}
