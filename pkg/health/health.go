package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/servant/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc checks one dependency. db.Healthcheck and redis.Healthcheck
// return functions of this type.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to check functions.
type Checks map[string]CheckFunc

// Response is the JSON body of the readiness endpoint.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of a single check function.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout bounds the whole check run.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger failed checks are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{timeout: defaultTimeout, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks concurrently under a shared timeout.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return runChecks(ctx, checks, newConfig(opts...))
}

func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(checks))
		status  = StatusHealthy
	)

	// Checks never return errors to the group so one failure does not
	// cancel the others.
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				result = Check{Status: StatusUnhealthy, Error: err.Error()}
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			results[name] = result
			if result.Status == StatusUnhealthy {
				status = StatusUnhealthy
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return &Response{Status: status, Checks: results}
}
