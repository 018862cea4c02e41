package middlewares

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/servant/internal"
)

type metricsStartKey struct{}

// MetricsMiddleware records request counts and latencies per route.
type MetricsMiddleware struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Metrics creates the request metrics and registers them with reg:
//
//	servant_requests_total{route,method,status}
//	servant_request_duration_seconds{route,method}
//
// Unmatched requests use the route label "unmatched" to keep cardinality
// bounded.
func Metrics(reg prometheus.Registerer) (*MetricsMiddleware, error) {
	m := &MetricsMiddleware{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "servant_requests_total",
				Help: "Total requests",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "servant_request_duration_seconds",
				Help:    "Request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.requests, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *MetricsMiddleware) Name() string { return "metrics" }

func (m *MetricsMiddleware) Start(c *internal.Context) error {
	c.Set(metricsStartKey{}, time.Now())
	return nil
}

func (m *MetricsMiddleware) Complete(c *internal.Context) error {
	route := routeLabel(c)
	method := c.Request().Method
	status := strconv.Itoa(c.Response().StatusOrDefault())

	m.requests.WithLabelValues(route, method, status).Inc()
	if start, ok := c.Get(metricsStartKey{}).(time.Time); ok {
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
	return nil
}
