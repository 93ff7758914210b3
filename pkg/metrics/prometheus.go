package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	logins       *prometheus.CounterVec
	priceSources *prometheus.CounterVec
	scrapes      *prometheus.CounterVec
	scrapeSize   prometheus.Histogram
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg. A nil reg
// means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		logins: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devsight_logins_total",
				Help: "Portal logins by platform and catalog match",
			},
			[]string{"platform", "matched"},
		),
		priceSources: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devsight_price_source_total",
				Help: "Price source attached to recorded logins",
			},
			[]string{"source"},
		),
		scrapes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devsight_price_scrapes_total",
				Help: "Price sampler outcomes",
			},
			[]string{"outcome"},
		),
		scrapeSize: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "devsight_price_sample_size",
				Help:    "Number of price observations per successful sample",
				Buckets: []float64{1, 3, 5, 10, 20, 40, 60, 100},
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "devsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordLogin counts one identified login.
func (r *Recorder) RecordLogin(platform string, matched bool) {
	r.logins.WithLabelValues(platform, strconv.FormatBool(matched)).Inc()
}

func (r *Recorder) RecordPriceSource(source string) {
	r.priceSources.WithLabelValues(source).Inc()
}

// RecordScrape counts a sampler outcome; samples > 0 also feeds the size histogram.
func (r *Recorder) RecordScrape(outcome string, samples int) {
	r.scrapes.WithLabelValues(outcome).Inc()
	if samples > 0 {
		r.scrapeSize.Observe(float64(samples))
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
