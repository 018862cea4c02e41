package cache

import (
	"context"
	"time"
)

// Cache is a generic key-value cache.
//
// TTL semantics for Set: a positive duration expires the item after that
// duration, zero or negative keeps it until it is deleted.
type Cache[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Len returns the number of stored entries, expired ones included.
	Len() int
}

// LoadFunc computes a value for a cache miss.
type LoadFunc[V any] func(ctx context.Context) (V, error)
