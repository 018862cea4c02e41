package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	expiresAt time.Time // zero = never
	value     V
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-memory cache safe for concurrent use.
type Memory[V any] struct {
	items map[string]entry[V]
	group singleflight.Group
	mu    sync.RWMutex
}

var _ Cache[int] = (*Memory[int])(nil)

// NewMemory creates an empty in-memory cache.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{items: make(map[string]entry[V])}
}

// Get retrieves a value by key.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		var zero V
		return zero, ErrNotFound
	}
	return e.value, nil
}

// Set stores a value. Writing an existing key overwrites it.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

// Delete removes a key from the cache.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// GetOrSet returns the cached value for key or loads, stores and returns it.
// Concurrent callers missing the same key share a single load. A failed load
// is not cached.
func (m *Memory[V]) GetOrSet(ctx context.Context, key string, ttl time.Duration, load LoadFunc[V]) (V, error) {
	if v, err := m.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		// Another flight may have filled the key while we waited for the group.
		if v, err := m.Get(ctx, key); err == nil {
			return v, nil
		}
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = m.Set(ctx, key, val, ttl)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
