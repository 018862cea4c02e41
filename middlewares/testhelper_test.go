package middlewares_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servant/internal"
	"github.com/dmitrymomot/servant/pkg/logger"
	"github.com/dmitrymomot/servant/pkg/session"
)

func okHandler(*internal.Context, internal.Args) (any, error) {
	return map[string]any{"ok": true}, nil
}

func build(t *testing.T, setup func(cfg *internal.ServerConfig)) *internal.Dispatcher {
	t.Helper()
	cfg := internal.NewServerConfig()
	setup(cfg)
	d, err := cfg.Build()
	require.NoError(t, err)
	return d
}

func dispatch(t *testing.T, d *internal.Dispatcher, target string, header http.Header) *internal.Response {
	t.Helper()
	req, err := internal.NewRequest(http.MethodGet, target, header, nil, "127.0.0.1:1")
	require.NoError(t, err)
	return d.Dispatch(context.Background(), req)
}

// bufferLogger returns a JSON logger writing into the returned buffer.
func bufferLogger(extractors ...logger.ContextExtractor) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.NewWithWriter(&buf, logger.Config{Level: slog.LevelDebug, Format: "json"}, extractors...), &buf
}

// sessionStore returns a store holding user u1 with the given permissions
// and a session "tok" in the given auth status.
func sessionStore(t *testing.T, status session.AuthStatus, perms ...string) *session.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.PutUser(ctx, session.User{ID: "u1", Login: "alice", Permissions: perms}))
	require.NoError(t, store.Insert(ctx, &session.Record{Token: "tok", UserID: "u1", AuthStatus: status}))
	return store
}
