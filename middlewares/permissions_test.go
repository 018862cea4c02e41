package middlewares_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servant/internal"
	"github.com/dmitrymomot/servant/middlewares"
	"github.com/dmitrymomot/servant/pkg/session"
)

func TestPermissionsRegistration(t *testing.T) {
	t.Parallel()

	t.Run("route without permissions", func(t *testing.T) {
		t.Parallel()
		cfg := internal.NewServerConfig()
		require.NoError(t, cfg.Use(middlewares.Permissions()))
		err := cfg.AddRoute("/", okHandler)
		require.ErrorIs(t, err, middlewares.ErrNoPermissions)
		require.ErrorIs(t, err, internal.ErrConfiguration)
	})

	t.Run("unknown permission", func(t *testing.T) {
		t.Parallel()
		cfg := internal.NewServerConfig()
		require.NoError(t, cfg.Use(middlewares.Permissions(middlewares.WithKnownPermissions("admin"))))
		require.NoError(t, cfg.AddRoute("/a", okHandler, internal.Permissions("admin")))
		require.NoError(t, cfg.AddRoute("/b", okHandler, internal.Permissions(middlewares.PermissionUser)))
		err := cfg.AddRoute("/c", okHandler, internal.Permissions("root"))
		require.ErrorIs(t, err, middlewares.ErrUnknownPermission)
	})

	t.Run("open allow-list", func(t *testing.T) {
		t.Parallel()
		cfg := internal.NewServerConfig()
		require.NoError(t, cfg.Use(middlewares.Permissions()))
		require.NoError(t, cfg.AddRoute("/", okHandler, internal.Permissions("anything")))
	})

	t.Run("routes registered before the middleware", func(t *testing.T) {
		t.Parallel()
		cfg := internal.NewServerConfig()
		require.NoError(t, cfg.AddRoute("/", okHandler))
		require.ErrorIs(t, cfg.Use(middlewares.Permissions()), middlewares.ErrNoPermissions)
	})
}

func TestPermissionsStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status session.AuthStatus
		held   []string
		cookie bool
		path   string
		want   int
	}{
		{name: "public without session", path: "/public", want: http.StatusOK},
		{name: "user route without session", path: "/user", want: http.StatusForbidden},
		{name: "user route with session", path: "/user", cookie: true, status: session.Complete, want: http.StatusOK},
		{name: "user route before second factor", path: "/user", cookie: true, status: session.OTPRequired, want: http.StatusForbidden},
		{name: "admin route without permission", path: "/admin", cookie: true, status: session.Complete, held: []string{"editor"}, want: http.StatusForbidden},
		{name: "admin route with permission", path: "/admin", cookie: true, status: session.Complete, held: []string{"admin"}, want: http.StatusOK},
		{name: "unmatched route", path: "/nowhere", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := sessionStore(t, tt.status, tt.held...)
			log, buf := bufferLogger()

			d := build(t, func(cfg *internal.ServerConfig) {
				require.NoError(t, cfg.Use(internal.NewSessionManager(store)))
				require.NoError(t, cfg.Use(middlewares.Permissions(middlewares.WithPermissionsLogger(log))))
				require.NoError(t, cfg.AddRoute("/public", okHandler, internal.Permissions(middlewares.PermissionPublic)))
				require.NoError(t, cfg.AddRoute("/user", okHandler, internal.Permissions(middlewares.PermissionUser)))
				require.NoError(t, cfg.AddRoute("/admin", okHandler, internal.Permissions("admin", "superuser")))
			})

			var header http.Header
			if tt.cookie {
				header = http.Header{"Cookie": {"sid=tok"}}
			}
			resp := dispatch(t, d, tt.path, header)
			assert.Equal(t, tt.want, resp.Status)
			if tt.want == http.StatusForbidden {
				assert.Contains(t, buf.String(), "AUTH-FAILURE")
			} else {
				assert.NotContains(t, buf.String(), "AUTH-FAILURE")
			}
		})
	}
}

func TestPermissionsCompleteHooksStillRun(t *testing.T) {
	t.Parallel()

	completed := false
	d := build(t, func(cfg *internal.ServerConfig) {
		require.NoError(t, cfg.Use(middlewares.Permissions()))
		require.NoError(t, cfg.Use(internal.CompleteFunc(func(c *internal.Context) error {
			completed = true
			return nil
		})))
		require.NoError(t, cfg.AddRoute("/user", okHandler, internal.Permissions(middlewares.PermissionUser)))
	})

	resp := dispatch(t, d, "/user", nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.True(t, completed)
}
