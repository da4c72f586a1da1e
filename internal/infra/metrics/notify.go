package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(notificationsTotal) }

var notificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_notifications_total",
		Help: "Terminal-state notifications delivered, labeled by kind and channel.",
	},
	[]string{"kind", "channel"}, // kind: 'completed', 'failed', 'paused'
)

func IncNotification(kind, channel string) {
	notificationsTotal.WithLabelValues(norm(kind), norm(channel)).Inc()
}
