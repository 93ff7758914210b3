package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	PortalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "devsight",
			Subsystem: "portal",
			Name:      "latency_seconds",
			Help:      "Latency of portal and admin endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	PortalErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devsight",
			Subsystem: "portal",
			Name:      "errors_total",
			Help:      "Errors by portal endpoint",
		},
		[]string{"endpoint"},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devsight",
			Subsystem: "portal",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client limiter",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(PortalLatency, PortalErrors, RateLimited)
	})
}
