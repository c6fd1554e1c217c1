package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the service. A nil *Metrics records
// nothing.
type Metrics struct {
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Transforms      *prometheus.CounterVec
	RateLimited     *prometheus.CounterVec
	UploadBytes     prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "imagehost",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "imagehost",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Transforms: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "imagehost",
				Name:      "transforms_total",
				Help:      "Image transformations by outcome",
			},
			[]string{"outcome"},
		),
		RateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "imagehost",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),
		UploadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "imagehost",
				Name:      "upload_bytes",
				Help:      "Size of uploaded originals",
				Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 8),
			},
		),
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(method, route, statusClass(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) TransformDone(outcome string) {
	if m == nil {
		return
	}
	m.Transforms.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Limited(scope string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(scope).Inc()
}

func (m *Metrics) Uploaded(size int) {
	if m == nil {
		return
	}
	m.UploadBytes.Observe(float64(size))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
