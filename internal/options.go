package internal

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option configures the App.
type Option func(*App)

// WithAppLogger sets the logger used by the App and its health endpoints.
func WithAppLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithHealthChecks mounts liveness and readiness endpoints.
//
// Example:
//
//	servant.WithHealthChecks(
//	    servant.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    servant.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMetrics exposes the metrics of g in the Prometheus text format.
// An empty path defaults to "/metrics".
func WithMetrics(path string, g prometheus.Gatherer) Option {
	return func(a *App) {
		if g == nil {
			return
		}
		if path == "" {
			path = defaultMetricsPath
		}
		a.metricsPath = path
		a.metrics = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
}
