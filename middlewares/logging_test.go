package middlewares_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servant/internal"
	"github.com/dmitrymomot/servant/middlewares"
	"github.com/dmitrymomot/servant/pkg/session"
)

// lastRecord decodes the last JSON line written to the buffer.
func lastRecord(t *testing.T, out string) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	return rec
}

func TestLogging(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()
		log, buf := bufferLogger()
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		calls := 0
		clock := func() time.Time {
			calls++
			return base.Add(time.Duration(calls) * 10 * time.Millisecond)
		}

		d := build(t, func(cfg *internal.ServerConfig) {
			require.NoError(t, cfg.Use(middlewares.Logging(log, middlewares.WithLoggingClock(clock))))
			require.NoError(t, cfg.AddRoute("/items/{id}", okHandler, internal.Params("id")))
		})
		dispatch(t, d, "/items/7", nil)

		rec := lastRecord(t, buf.String())
		assert.Equal(t, "request", rec["msg"])
		assert.Equal(t, "INFO", rec["level"])
		assert.Equal(t, "GET", rec["method"])
		assert.Equal(t, "/items/7", rec["path"])
		assert.Equal(t, "/items/{id}", rec["route"])
		assert.EqualValues(t, 200, rec["status"])
		assert.Equal(t, "127.0.0.1", rec["ip"])
		assert.EqualValues(t, (10 * time.Millisecond).Nanoseconds(), rec["duration"])
		assert.NotContains(t, rec, "user_id")
	})

	t.Run("not found logs a warning", func(t *testing.T) {
		t.Parallel()
		log, buf := bufferLogger()
		d := build(t, func(cfg *internal.ServerConfig) {
			require.NoError(t, cfg.Use(middlewares.Logging(log)))
		})
		dispatch(t, d, "/missing", nil)

		rec := lastRecord(t, buf.String())
		assert.Equal(t, "WARN", rec["level"])
		assert.Equal(t, "unmatched", rec["route"])
		assert.EqualValues(t, 404, rec["status"])
	})

	t.Run("handler failure logs an error", func(t *testing.T) {
		t.Parallel()
		log, buf := bufferLogger()
		d := build(t, func(cfg *internal.ServerConfig) {
			require.NoError(t, cfg.Use(middlewares.Logging(log)))
			require.NoError(t, cfg.AddRoute("/boom", func(*internal.Context, internal.Args) (any, error) {
				panic("boom")
			}))
		})
		resp := dispatch(t, d, "/boom", nil)
		require.Equal(t, http.StatusInternalServerError, resp.Status)

		rec := lastRecord(t, buf.String())
		assert.Equal(t, "ERROR", rec["level"])
		assert.EqualValues(t, 500, rec["status"])
	})

	t.Run("session user is logged", func(t *testing.T) {
		t.Parallel()
		log, buf := bufferLogger()
		store := sessionStore(t, session.Complete)
		d := build(t, func(cfg *internal.ServerConfig) {
			require.NoError(t, cfg.Use(middlewares.Logging(log)))
			require.NoError(t, cfg.Use(internal.NewSessionManager(store)))
			require.NoError(t, cfg.AddRoute("/", okHandler))
		})
		dispatch(t, d, "/", http.Header{"Cookie": {"sid=tok"}})

		rec := lastRecord(t, buf.String())
		assert.Equal(t, "u1", rec["user_id"])
	})
}
