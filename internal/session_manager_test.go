package internal_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servant/internal"
	"github.com/dmitrymomot/servant/pkg/codec"
	"github.com/dmitrymomot/servant/pkg/cookie"
	"github.com/dmitrymomot/servant/pkg/session"
)

const testIP = "127.0.0.1"

func newSessionStore(t *testing.T) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.PutUser(context.Background(), session.User{
		ID: "u1", Login: "alice", Name: "Alice", Permissions: []string{"USER"},
	}))
	return store
}

func seedSession(t *testing.T, store *session.MemoryStore, token, ip string, data []byte) {
	t.Helper()
	require.NoError(t, store.Insert(context.Background(), &session.Record{
		Token: token, UserID: "u1", IP: ip, Data: data, AuthStatus: session.Complete,
	}))
}

func withCookie(token string) http.Header {
	return http.Header{"Cookie": {"sid=" + token}}
}

// sessionServer registers the session manager and a handful of routes that
// exercise it. seen receives the session each handler observed.
func sessionServer(t *testing.T, store session.Store, seen **session.Session, opts ...internal.SessionOption) *internal.Dispatcher {
	t.Helper()
	return build(t, func(cfg *internal.ServerConfig) {
		require.NoError(t, cfg.Use(internal.NewSessionManager(store, opts...)))
		require.NoError(t, cfg.AddRoute("/me", func(c *internal.Context, _ internal.Args) (any, error) {
			*seen = c.Session()
			if s := c.Session(); s != nil {
				s.Set("visits", session.ValueOr(s, "visits", 0)+1)
			}
			return map[string]any{}, nil
		}))
		require.NoError(t, cfg.AddRoute("/login", func(c *internal.Context, _ internal.Args) (any, error) {
			*seen = c.NewSession("u1", "alice", "Alice", session.Complete)
			return map[string]any{}, nil
		}))
		require.NoError(t, cfg.AddRoute("/logout", func(c *internal.Context, _ internal.Args) (any, error) {
			c.DeleteSession()
			return nil, nil
		}))
	})
}

func TestSessionManagerStart(t *testing.T) {
	t.Parallel()

	t.Run("no cookie", func(t *testing.T) {
		t.Parallel()
		var seen *session.Session
		d := sessionServer(t, newSessionStore(t), &seen)
		resp := dispatch(t, d, http.MethodGet, "/me", nil, "")
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Nil(t, seen)
		assert.Empty(t, resp.CookieLines())
	})

	t.Run("unknown token clears cookie", func(t *testing.T) {
		t.Parallel()
		var seen *session.Session
		d := sessionServer(t, newSessionStore(t), &seen)
		resp := dispatch(t, d, http.MethodGet, "/me", withCookie("bogus"), "")
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Nil(t, seen)
		directive, ok := resp.Cookie("sid")
		require.True(t, ok)
		assert.Equal(t, cookie.Expired, directive)
	})

	t.Run("loads and updates", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		seedSession(t, store, "tok", testIP, nil)

		var seen *session.Session
		d := sessionServer(t, store, &seen)
		for range 3 {
			resp := dispatch(t, d, http.MethodGet, "/me", withCookie("tok"), "")
			assert.Equal(t, http.StatusOK, resp.Status)
		}
		require.NotNil(t, seen)
		assert.Equal(t, "alice", seen.Login)
		assert.Equal(t, []string{"USER"}, seen.Permissions)
		assert.True(t, seen.Authenticated())

		rec, err := store.Load(context.Background(), "tok")
		require.NoError(t, err)
		data, err := session.DecodeData(rec.Data)
		require.NoError(t, err)
		visits, ok := codec.As[int](data["visits"])
		require.True(t, ok)
		assert.Equal(t, 3, visits)
	})

	t.Run("corrupt data drops the session", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		seedSession(t, store, "tok", testIP, []byte("not json"))

		var seen *session.Session
		d := sessionServer(t, store, &seen)
		resp := dispatch(t, d, http.MethodGet, "/me", withCookie("tok"), "")
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Nil(t, seen)
		assert.Equal(t, 0, store.Len())
		directive, _ := resp.Cookie("sid")
		assert.Equal(t, cookie.Expired, directive)
	})

	t.Run("ip mismatch allowed by default", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		seedSession(t, store, "tok", "10.9.9.9", nil)

		var seen *session.Session
		d := sessionServer(t, store, &seen)
		dispatch(t, d, http.MethodGet, "/me", withCookie("tok"), "")
		assert.NotNil(t, seen)
	})

	t.Run("ip mismatch rejected", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		seedSession(t, store, "tok", "10.9.9.9", nil)

		var seen *session.Session
		d := sessionServer(t, store, &seen, internal.WithIPPolicy(internal.IPMismatchReject))
		dispatch(t, d, http.MethodGet, "/me", withCookie("tok"), "")
		assert.Nil(t, seen)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("ip check disabled", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		seedSession(t, store, "tok", "10.9.9.9", nil)

		var seen *session.Session
		d := sessionServer(t, store, &seen,
			internal.WithSessionCheckIP(false),
			internal.WithIPPolicy(internal.IPMismatchReject),
		)
		dispatch(t, d, http.MethodGet, "/me", withCookie("tok"), "")
		assert.NotNil(t, seen)
	})

	t.Run("forged forwarded address ignored", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		seedSession(t, store, "tok", "10.9.9.9", nil)

		var seen *session.Session
		d := sessionServer(t, store, &seen, internal.WithIPPolicy(internal.IPMismatchReject))
		h := withCookie("tok")
		h.Set("X-Forwarded-For", "10.9.9.9")
		dispatch(t, d, http.MethodGet, "/me", h, "")
		assert.Nil(t, seen)
	})
}

func TestSessionManagerComplete(t *testing.T) {
	t.Parallel()

	t.Run("login issues cookie", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		var seen *session.Session
		d := sessionServer(t, store, &seen)

		resp := dispatch(t, d, http.MethodPost, "/login", nil, "")
		require.NotNil(t, seen)
		assert.False(t, seen.IsNew())
		assert.Equal(t, testIP, seen.IP)

		directive, ok := resp.Cookie("sid")
		require.True(t, ok)
		assert.Equal(t, seen.ID+"; HttpOnly", directive)
		assert.Equal(t, 1, store.Len())

		_, err := store.Load(context.Background(), seen.ID)
		require.NoError(t, err)
	})

	t.Run("login rotates an existing session", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		seedSession(t, store, "old", testIP, nil)

		var seen *session.Session
		d := sessionServer(t, store, &seen)
		dispatch(t, d, http.MethodPost, "/login", withCookie("old"), "")

		require.NotNil(t, seen)
		assert.NotEqual(t, "old", seen.ID)
		assert.Equal(t, 1, store.Len())
		_, err := store.Load(context.Background(), "old")
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("logout deletes", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		seedSession(t, store, "tok", testIP, nil)

		var seen *session.Session
		d := sessionServer(t, store, &seen)
		resp := dispatch(t, d, http.MethodPost, "/logout", withCookie("tok"), "")

		assert.Equal(t, http.StatusNoContent, resp.Status)
		assert.Equal(t, 0, store.Len())
		lines := resp.CookieLines()
		require.Len(t, lines, 1)
		assert.True(t, strings.HasPrefix(lines[0], "sid=deleted;"))
	})

	t.Run("identity change does not alter the response", func(t *testing.T) {
		t.Parallel()
		store := newSessionStore(t)
		seedSession(t, store, "tok", testIP, nil)

		d := build(t, func(cfg *internal.ServerConfig) {
			require.NoError(t, cfg.Use(internal.NewSessionManager(store)))
			require.NoError(t, cfg.AddRoute("/me", func(c *internal.Context, _ internal.Args) (any, error) {
				require.NoError(t, store.Delete(c, c.Session().ID))
				return map[string]any{"ok": true}, nil
			}))
		})

		resp := dispatch(t, d, http.MethodGet, "/me", withCookie("tok"), "")
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, 0, store.Len())
	})
}
