package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache stores rendered artifacts by key.
type Cache interface {
	// Get returns the cached data and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}

// DefaultDir returns the per-user cache directory for rendered artifacts.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "choosable"), nil
}

// GetOrCompute returns the cached value for key, calling compute and storing
// its result on a miss. Cache read and write failures fall through to
// compute; only compute errors are returned.
func GetOrCompute(ctx context.Context, c Cache, key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	if data, hit, err := c.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}
	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, false, nil
}
