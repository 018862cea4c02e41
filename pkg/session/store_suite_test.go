package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servant/pkg/session"
)

type fullStore interface {
	session.Store
	session.Rotator
	session.UserStore
}

// runStoreSuite checks the contract every session store implements.
func runStoreSuite(t *testing.T, store fullStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.PutUser(ctx, session.User{
		ID: "u1", Login: "ann", Name: "Ann", Permissions: []string{"reports"},
	}))
	require.NoError(t, store.PutUser(ctx, session.User{ID: "u2", Login: "bob", Name: "Bob"}))

	t.Run("load missing token", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("insert and load joins user", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, &session.Record{
			Token: "t-insert", UserID: "u1", AuthStatus: session.OTPRequired,
			IP: "10.0.0.1", Data: []byte(`{"a":1}`),
		}))

		rec, err := store.Load(ctx, "t-insert")
		require.NoError(t, err)
		assert.Equal(t, "u1", rec.UserID)
		assert.Equal(t, "ann", rec.Login)
		assert.Equal(t, "Ann", rec.Name)
		assert.Equal(t, []string{"reports"}, rec.Permissions)
		assert.Equal(t, session.OTPRequired, rec.AuthStatus)
		assert.Equal(t, "10.0.0.1", rec.IP)
		assert.Equal(t, `{"a":1}`, string(rec.Data))
		assert.False(t, rec.LoginTime.IsZero())
	})

	t.Run("insert for unknown user fails", func(t *testing.T) {
		err := store.Insert(ctx, &session.Record{Token: "t-orphan", UserID: "nobody"})
		require.ErrorIs(t, err, session.ErrUserNotFound)
	})

	t.Run("update matches token and user", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, &session.Record{Token: "t-update", UserID: "u1"}))

		n, err := store.Update(ctx, "t-update", "u1", session.Complete, []byte(`{"b":2}`))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		rec, err := store.Load(ctx, "t-update")
		require.NoError(t, err)
		assert.Equal(t, session.Complete, rec.AuthStatus)
		assert.Equal(t, `{"b":2}`, string(rec.Data))

		n, err = store.Update(ctx, "t-update", "u2", session.Complete, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = store.Update(ctx, "t-gone", "u1", session.Complete, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, &session.Record{Token: "t-delete", UserID: "u2"}))
		require.NoError(t, store.Delete(ctx, "t-delete"))
		require.NoError(t, store.Delete(ctx, "t-delete"))

		_, err := store.Load(ctx, "t-delete")
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("rotate replaces token", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, &session.Record{Token: "t-old", UserID: "u1"}))
		require.NoError(t, store.Rotate(ctx, "t-old", &session.Record{
			Token: "t-new", UserID: "u1", AuthStatus: session.Complete,
		}))

		_, err := store.Load(ctx, "t-old")
		require.ErrorIs(t, err, session.ErrNotFound)

		rec, err := store.Load(ctx, "t-new")
		require.NoError(t, err)
		assert.Equal(t, session.Complete, rec.AuthStatus)
	})

	t.Run("user by login", func(t *testing.T) {
		u, err := store.UserByLogin(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "u2", u.ID)
		assert.Equal(t, "Bob", u.Name)

		_, err = store.UserByLogin(ctx, "carol")
		require.ErrorIs(t, err, session.ErrUserNotFound)
	})
}
