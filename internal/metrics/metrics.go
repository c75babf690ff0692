// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sro_bot_requests_total",
		Help: "Total number of questions asked.",
	})

	LatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sro_bot_latency_seconds",
		Help:    "Question-to-answer latency in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	QuotaRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sro_bot_quota_rejections_total",
		Help: "Questions rejected by the daily quota.",
	})
)
