package session

import "errors"

// Session errors.
var (
	// ErrNotFound is returned when a token has no session row or the row has
	// no matching user.
	ErrNotFound = errors.New("session: not found")

	// ErrUserNotFound is returned when a user lookup finds nothing.
	ErrUserNotFound = errors.New("session: user not found")

	// ErrCorrupt is returned when a stored data blob cannot be decoded.
	ErrCorrupt = errors.New("session: corrupt session data")

	// ErrIdentityChanged is returned when an update of an existing session
	// affects no row: the token was deleted or now belongs to another user.
	ErrIdentityChanged = errors.New("session: identity changed during request")

	// ErrInvalidTransition is returned by Advance for backwards or unknown
	// authentication status transitions.
	ErrInvalidTransition = errors.New("session: invalid auth status transition")

	// ErrInvalidSession is returned when a session lacks its identity fields.
	ErrInvalidSession = errors.New("session: token and user are required")
)
