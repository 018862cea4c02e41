package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/servant/internal"
	"github.com/dmitrymomot/servant/pkg/logger"
)

type logStartKey struct{}

// LoggingMiddleware writes one access log record per request.
type LoggingMiddleware struct {
	logger *slog.Logger
	now    func() time.Time
}

// LoggingOption configures LoggingMiddleware.
type LoggingOption func(*LoggingMiddleware)

// WithLoggingClock overrides the time source.
func WithLoggingClock(now func() time.Time) LoggingOption {
	return func(m *LoggingMiddleware) {
		if now != nil {
			m.now = now
		}
	}
}

// Logging returns access logging middleware. Register it first so the
// recorded duration covers the other hooks. Server errors are logged at
// error level, client errors at warn, the rest at info.
func Logging(l *slog.Logger, opts ...LoggingOption) *LoggingMiddleware {
	if l == nil {
		l = logger.NewNope()
	}
	m := &LoggingMiddleware{logger: l, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *LoggingMiddleware) Name() string { return "logging" }

func (m *LoggingMiddleware) Start(c *internal.Context) error {
	c.Set(logStartKey{}, m.now())
	return nil
}

func (m *LoggingMiddleware) Complete(c *internal.Context) error {
	status := c.Response().StatusOrDefault()

	attrs := []slog.Attr{
		slog.String("method", c.Request().Method),
		slog.String("path", c.Request().Path()),
		slog.String("route", routeLabel(c)),
		slog.Int("status", status),
		slog.String("ip", c.IP()),
	}
	if start, ok := c.Get(logStartKey{}).(time.Time); ok {
		attrs = append(attrs, slog.Duration("duration", m.now().Sub(start)))
	}
	if s := c.Session(); s != nil {
		attrs = append(attrs, slog.String("user_id", s.UserID))
	}

	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	m.logger.LogAttrs(c, level, "request", attrs...)
	return nil
}

// routeLabel names the matched route for logs and metrics.
func routeLabel(c *internal.Context) string {
	if r := c.Route(); r != nil {
		return r.Pattern
	}
	return "unmatched"
}
