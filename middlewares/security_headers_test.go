package middlewares_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servant/internal"
	"github.com/dmitrymomot/servant/middlewares"
)

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	t.Run("balanced defaults", func(t *testing.T) {
		t.Parallel()
		d := build(t, func(cfg *internal.ServerConfig) {
			require.NoError(t, cfg.Use(middlewares.SecurityHeaders()))
			require.NoError(t, cfg.AddRoute("/", okHandler))
		})
		resp := dispatch(t, d, "/", nil)

		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
		assert.Equal(t, middlewares.BalancedSecurity.StrictTransportSecurity, resp.Header.Get("Strict-Transport-Security"))
		assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
	})

	t.Run("error responses carry headers", func(t *testing.T) {
		t.Parallel()
		d := build(t, func(cfg *internal.ServerConfig) {
			require.NoError(t, cfg.Use(middlewares.SecurityHeadersWithConfig(middlewares.StrictSecurity)))
		})
		resp := dispatch(t, d, "/missing", nil)

		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
		assert.Equal(t, "same-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
	})

	t.Run("development drops HSTS and empty values", func(t *testing.T) {
		t.Parallel()
		cfg := middlewares.DevelopmentSecurity
		cfg.StrictTransportSecurity = "max-age=60"
		cfg.CustomHeaders = map[string]string{"X-App": "servant"}

		d := build(t, func(sc *internal.ServerConfig) {
			require.NoError(t, sc.Use(middlewares.SecurityHeadersWithConfig(cfg)))
			require.NoError(t, sc.AddRoute("/", okHandler))
		})
		resp := dispatch(t, d, "/", nil)

		assert.Empty(t, resp.Header.Values("Strict-Transport-Security"))
		assert.Empty(t, resp.Header.Values("X-Frame-Options"))
		assert.Equal(t, "servant", resp.Header.Get("X-App"))
	})
}
