package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	agentRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beanctl_agent_request_duration_seconds",
			Help:    "Round-trip time of requests to the management agent",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"type"}, // read, write, exec, list, search, version
	)

	agentRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beanctl_agent_request_total",
			Help: "Total number of requests sent to the management agent",
		},
		[]string{"type", "status"}, // status: success or error
	)
)
