package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	renders       *prometheus.CounterVec
	pointsPerDraw prometheus.Histogram
	forecasts     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered on reg (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		renders: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartcast_renders_total",
				Help: "Total number of chart geometries rendered",
			},
			[]string{"format"},
		),
		pointsPerDraw: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chartcast_render_points",
				Help:    "Number of points (historical and forecast) per render",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
		forecasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartcast_forecast_outcomes_total",
				Help: "Forecast resolutions by outcome (cached, fetched, requested, pending, failed, disabled)",
			},
			[]string{"outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chartcast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRender records a render in the given output format.
func (r *Recorder) RecordRender(format string, points int) {
	r.renders.WithLabelValues(format).Inc()
	r.pointsPerDraw.Observe(float64(points))
}

// RecordForecast records how a forecast was resolved.
func (r *Recorder) RecordForecast(outcome string) {
	r.forecasts.WithLabelValues(outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}

// Nop discards everything. Useful in tests and the CLI.
type Nop struct{}

func (Nop) RecordRender(string, int)            {}
func (Nop) RecordForecast(string)               {}
func (Nop) RecordError(string)                  {}
func (Nop) RecordLatency(string, time.Duration) {}
