package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servant/pkg/logger"
)

type ctxKey struct{}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	t.Run("json output with extractors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Config{Level: slog.LevelInfo},
			logger.FromContext[string](ctxKey{}, "request_id"),
			nil,
		)

		ctx := context.WithValue(context.Background(), ctxKey{}, "abc-123")
		log.InfoContext(ctx, "handled", slog.Int("status", 200))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "handled", rec["msg"])
		assert.Equal(t, "abc-123", rec["request_id"])
		assert.EqualValues(t, 200, rec["status"])
	})

	t.Run("skips missing context values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Config{},
			logger.FromContext[string](ctxKey{}, "request_id"),
		)
		log.With("component", "test").InfoContext(context.Background(), "no id")

		assert.NotContains(t, buf.String(), "request_id")
		assert.Contains(t, buf.String(), `"component":"test"`)
	})

	t.Run("respects level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.Config{Level: slog.LevelWarn, Format: "text"})
		log.Info("dropped")
		log.Warn("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "msg=kept")
	})
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.NotNil(t, log)
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestSentryFlush_NotInitialized(t *testing.T) {
	t.Parallel()

	require.NoError(t, logger.SentryFlush(0)(context.Background()))
}
