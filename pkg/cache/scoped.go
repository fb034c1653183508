package cache

import (
	"context"
	"time"
)

// ScopedCache prefixes every key of an inner cache, giving each book its
// own namespace in a shared cache directory.
//
//	c := cache.NewScoped(fileCache, "book:"+cache.Hash([]byte(path))+":")
type ScopedCache struct {
	inner  Cache
	prefix string
}

// NewScoped wraps inner with a key prefix. A nil inner is a [NullCache].
func NewScoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &ScopedCache{inner: inner, prefix: prefix}
}

// Get reads the prefixed key.
func (c *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set writes the prefixed key.
func (c *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes the prefixed key.
func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the inner cache.
func (c *ScopedCache) Close() error {
	return c.inner.Close()
}

var _ Cache = (*ScopedCache)(nil)
