package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(pollsTotal, pollLatencyMs, milestonesTotal)
}

var pollsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_polls_total",
		Help: "Total status polls, labeled by observed outcome.",
	},
	[]string{"outcome"}, // 'pending', 'active', 'completed', 'failed', 'paused', 'no_task', 'error'
)

var pollLatencyMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "pipeline_poll_latency_ms",
		Help:    "Find-task round-trip latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
	},
)

var milestonesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_progress_milestones_total",
		Help: "Progress milestone crossings, labeled by threshold.",
	},
	[]string{"threshold"}, // '25', '50', '75', '100'
)

func IncPoll(outcome string) {
	pollsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObservePollLatency(ms int) {
	pollLatencyMs.Observe(float64(ms))
}

func IncMilestone(threshold int) {
	milestonesTotal.WithLabelValues(strconv.Itoa(threshold)).Inc()
}
