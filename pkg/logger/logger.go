package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the log level, output format and optional Sentry fan-out.
type Config struct {
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
	Format string     `env:"LOG_FORMAT" envDefault:"json" yaml:"format"` // json | text
	Sentry SentryConfig
}

// New creates a logger writing to stdout. See NewWithWriter.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter creates a logger writing to w. Records at Sentry levels are
// also sent to Sentry when a DSN is configured; context extractors apply to
// both destinations.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	if cfg.Sentry.DSN != "" {
		sh, err := newSentryHandler(cfg.Sentry)
		if err != nil {
			// Keep logging locally; a broken DSN must not stop the server.
			slog.New(h).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			h = fanout(h, sh)
		}
	}

	return slog.New(withExtractors(h, extractors...))
}

// NewNope creates a logger that discards all output.
// It is the default wherever a logger is optional.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
