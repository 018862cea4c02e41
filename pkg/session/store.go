package session

import (
	"context"
	"time"
)

// Record is a session row joined with the identity of its user.
type Record struct {
	LoginTime    time.Time
	LastActiveAt time.Time

	Token       string
	UserID      string
	Login       string // from users, read-only
	Name        string // from users, read-only
	IP          string
	Permissions []string // from users, read-only
	Data        []byte
	AuthStatus  AuthStatus
}

// User is the identity a session belongs to.
type User struct {
	ID          string
	Login       string
	Name        string
	Permissions []string
}

// Store persists sessions.
type Store interface {
	// Load returns the session for token joined with its user.
	// Returns ErrNotFound if either is missing.
	Load(ctx context.Context, token string) (*Record, error)

	// Insert persists a new session. Identity columns from users are ignored.
	Insert(ctx context.Context, rec *Record) error

	// Update writes status and data of the session identified by token and
	// userID, refreshing its activity time. Returns the number of rows
	// affected; zero means the identity no longer matches.
	Update(ctx context.Context, token, userID string, status AuthStatus, data []byte) (int64, error)

	// Delete removes the session. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error
}

// Rotator is implemented by stores that can replace a session atomically.
type Rotator interface {
	// Rotate deletes the old token and inserts rec in one step.
	Rotate(ctx context.Context, oldToken string, rec *Record) error
}

// UserStore manages the users sessions are joined with.
type UserStore interface {
	PutUser(ctx context.Context, u User) error
	UserByLogin(ctx context.Context, login string) (*User, error)
}
