package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/servant/pkg/health"
	"github.com/dmitrymomot/servant/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App is the HTTP shell around a Dispatcher. Operational endpoints (health,
// metrics) are served by chi; every other request goes to the dispatcher.
// App is immutable after creation.
type App struct {
	router       chi.Router
	dispatcher   *Dispatcher
	healthConfig *healthConfig
	metrics      http.Handler
	metricsPath  string
	logger       *slog.Logger
}

// New creates an App serving d.
//
// Example:
//
//	d, err := cfg.Build()
//	if err != nil {
//	    return err
//	}
//	app := servant.New(d, servant.WithHealthChecks())
//	err = app.Run(":8080", servant.Logger(log))
func New(d *Dispatcher, opts ...Option) *App {
	a := &App{
		router:     chi.NewRouter(),
		dispatcher: d,
		logger:     logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Dispatcher returns the dispatcher handling application routes.
func (a *App) Dispatcher() *Dispatcher {
	return a.dispatcher
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

func (a *App) setupRoutes() {
	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(
			a.healthConfig.checks,
			health.WithLogger(a.logger),
		))
	}
	if a.metrics != nil {
		a.router.Get(a.metricsPath, a.metrics.ServeHTTP)
	}

	// Everything chi does not own belongs to the dispatcher, which has its
	// own route table and 404 handling.
	a.router.NotFound(a.dispatcher.ServeHTTP)
	a.router.MethodNotAllowed(a.dispatcher.ServeHTTP)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default operational paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
	defaultMetricsPath   = "/metrics"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel on each readiness request.
//
// Example:
//
//	servant.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
