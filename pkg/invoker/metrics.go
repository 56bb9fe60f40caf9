package invoker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beanctl_command_duration_seconds",
			Help:    "Time taken to run one command token, including the remote call",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"kind"}, // attribute, operation or unknown
	)

	commandTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beanctl_command_total",
			Help: "Total number of command tokens run",
		},
		[]string{"kind", "status"}, // status: success or error
	)
)
