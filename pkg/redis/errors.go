package redis

import "errors"

// Errors returned while opening and checking the session store client.
// Driver errors are joined to them.
var (
	// REDIS_URL is unset.
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")
	// The URL is not redis:// or rediss://, or go-redis rejected it.
	ErrFailedToParseURL = errors.New("redis: failed to parse connection URL")
	// Every attempt failed to PING.
	ErrConnectionFailed  = errors.New("redis: failed to establish connection")
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
	ErrNilClient         = errors.New("redis: session store client is nil")
)
