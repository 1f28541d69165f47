package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	appendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minichat_messages_appended_total",
		Help: "Messages durably appended to the log.",
	})
	resetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minichat_log_resets_total",
		Help: "Times the message log was cleared.",
	})
	quarantinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minichat_log_quarantined_total",
		Help: "Unreadable persisted logs moved to quarantine at startup.",
	})
)
