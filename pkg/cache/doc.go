// Package cache provides a generic in-process key-value cache.
//
// [Memory] keeps entries in a map guarded by a read-write mutex. Entries
// either live for the lifetime of the cache or expire lazily after a TTL;
// there is no size bound and no background sweeper, so the cache suits data
// that is bounded by construction (static assets, compiled templates).
//
// [Memory.GetOrSet] collapses concurrent misses for the same key into one
// load using golang.org/x/sync/singleflight:
//
//	files := cache.NewMemory[*File]()
//	f, err := files.GetOrSet(ctx, "app.js", func(ctx context.Context) (*File, error) {
//		return readFile("app.js")
//	})
package cache
