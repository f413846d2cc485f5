package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	refreshTotal *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	observations *prometheus.GaugeVec
	queriesTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_series_refresh_total",
				Help: "Total number of series refresh attempts",
			},
			[]string{"series", "result"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macropulse_fetch_duration_seconds",
				Help:    "Duration of upstream observation fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"series"},
		),
		observations: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "macropulse_series_observations",
				Help: "Number of monthly observations held for a series",
			},
			[]string{"series"},
		),
		queriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_queries_total",
				Help: "Total number of classification and composite queries",
			},
			[]string{"kind"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordRefresh records the outcome of one series refresh.
func (r *Recorder) RecordRefresh(seriesID, result string) {
	r.refreshTotal.WithLabelValues(seriesID, result).Inc()
}

// RecordFetchLatency records the latency of an upstream fetch in seconds.
func (r *Recorder) RecordFetchLatency(seriesID string, seconds float64) {
	r.fetchLatency.WithLabelValues(seriesID).Observe(seconds)
}

// RecordObservationCount records how many observations a series holds.
func (r *Recorder) RecordObservationCount(seriesID string, n int) {
	r.observations.WithLabelValues(seriesID).Set(float64(n))
}

// RecordQuery records a served query by kind (heatmap, composite, ...).
func (r *Recorder) RecordQuery(kind string) {
	r.queriesTotal.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
