package static

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrymomot/servant/pkg/cache"
)

// Registry maps logical keys to root directories and caches files read from
// them. Keys are registered before traffic starts; Get is safe for concurrent
// use.
type Registry struct {
	roots  map[string]string
	files  *cache.Memory[*CachedFile]
	mu     sync.RWMutex
	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		roots: make(map[string]string),
		files: cache.NewMemory[*CachedFile](),
	}
}

// RegisterKey binds key to dir. The directory must be absolute and exist.
func (r *Registry) RegisterKey(key, dir string) error {
	if !filepath.IsAbs(dir) {
		return fmt.Errorf("%w: key %q path %q is not absolute", ErrInvalidRoot, key, dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: key %q path %q does not exist", ErrInvalidRoot, key, dir)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrSealed
	}
	if _, ok := r.roots[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	r.roots[key] = filepath.Clean(dir)
	return nil
}

// Root returns the directory registered for key.
func (r *Registry) Root(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dir, ok := r.roots[key]
	return dir, ok
}

// Seal freezes the key set. Get keeps working.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Get returns the cached file for rel under key, reading it on first access.
func (r *Registry) Get(ctx context.Context, key, rel string) (*CachedFile, error) {
	root, ok := r.Root(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return r.files.GetOrSet(ctx, key+"\x00"+rel, 0, func(context.Context) (*CachedFile, error) {
		return load(root, rel)
	})
}

// Len returns the number of cached files.
func (r *Registry) Len() int {
	return r.files.Len()
}

func load(root, rel string) (*CachedFile, error) {
	fqn, err := resolve(root, rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fqn)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return nil, fmt.Errorf("static: stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}

	mt, ok := MimeType(rel)
	if !ok {
		return nil, fmt.Errorf("%w: %q (from %q)", ErrUnknownMimeType, filepath.Ext(rel), rel)
	}

	content, err := os.ReadFile(fqn)
	if err != nil {
		return nil, fmt.Errorf("static: read %s: %w", rel, err)
	}
	return newCachedFile(rel, mt, content), nil
}

// resolve joins rel under root and rejects results that escape it.
func resolve(root, rel string) (string, error) {
	if rel == "" || strings.ContainsRune(rel, 0) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, rel)
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	fqn := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(fqn, prefix) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, rel)
	}
	return fqn, nil
}
