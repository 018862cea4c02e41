package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servant/pkg/session"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	runStoreSuite(t, session.NewMemoryStore())
}

func TestMemoryStore_RotateKeepsOldOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.PutUser(ctx, session.User{ID: "u1", Login: "ann"}))
	require.NoError(t, store.Insert(ctx, &session.Record{Token: "old", UserID: "u1"}))

	err := store.Rotate(ctx, "old", &session.Record{Token: "new", UserID: "ghost"})
	require.ErrorIs(t, err, session.ErrUserNotFound)

	_, err = store.Load(ctx, "old")
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
}
