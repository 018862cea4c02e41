package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" yaml:"dsn"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production" yaml:"environment"`
	Release     string `env:"APP_VERSION" yaml:"-"`
	// WarningsAsLogs also ships warnings (e.g. SECURITY and AUTH-FAILURE
	// lines) as Sentry logs; errors always create issues.
	WarningsAsLogs bool `env:"SENTRY_WARNINGS" envDefault:"true" yaml:"warnings"`
}

func newSentryHandler(cfg SentryConfig) (slog.Handler, error) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		return nil, err
	}

	logLevels := []slog.Level{slog.LevelError}
	if cfg.WarningsAsLogs {
		logLevels = []slog.Level{slog.LevelWarn, slog.LevelError}
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background()), nil
}

// ErrSentryFlushTimeout is returned when buffered Sentry events could not be
// delivered before shutdown.
var ErrSentryFlushTimeout = errors.New("logger: sentry flush timed out")

// SentryFlush returns a shutdown hook that waits for buffered events.
// It is a no-op when Sentry was never initialized.
func SentryFlush(timeout time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		if sentry.CurrentHub().Client() == nil {
			return nil
		}
		if dl, ok := ctx.Deadline(); ok {
			timeout = min(timeout, time.Until(dl))
		}
		if !sentry.Flush(timeout) {
			return ErrSentryFlushTimeout
		}
		return nil
	}
}
