package media

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "minichat_uploads_stored_total",
	Help: "Media files stored by the upload handler.",
})
