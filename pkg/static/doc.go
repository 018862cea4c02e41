// Package static serves immutable files from registered directories out of a
// process-lifetime memory cache.
//
// A directory is registered under a short key once at startup:
//
//	reg := static.NewRegistry()
//	if err := reg.RegisterKey("generated", "/srv/app/generated"); err != nil {
//		return err
//	}
//
// The first Get for a (key, path) pair reads the whole file, detects its
// mime type from the extension and computes an etag; subsequent calls return
// the same *CachedFile. Entries are never evicted or invalidated, so served
// assets are expected to be versioned by filename (with index.html the only
// unversioned document).
package static
