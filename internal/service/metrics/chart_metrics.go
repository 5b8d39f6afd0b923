package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Endpoint metrics for the chart API, labelled by endpoint name.
type Endpoint struct {
	Latency *prometheus.HistogramVec
	Errors  *prometheus.CounterVec
	Streams prometheus.Gauge
}

func NewEndpoint(reg prometheus.Registerer) *Endpoint {
	f := promauto.With(reg)
	return &Endpoint{
		Latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "chartcast",
				Subsystem: "api",
				Name:      "latency_seconds",
				Help:      "Latency of chart endpoints",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		Errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chartcast",
				Subsystem: "api",
				Name:      "errors_total",
				Help:      "Errors by chart endpoint",
			},
			[]string{"endpoint"},
		),
		Streams: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "chartcast",
				Subsystem: "api",
				Name:      "open_streams",
				Help:      "Currently open chart streams",
			},
		),
	}
}

// Observe records one call to endpoint.
func (e *Endpoint) Observe(endpoint string, start time.Time, failed bool) {
	e.Latency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if failed {
		e.Errors.WithLabelValues(endpoint).Inc()
	}
}
