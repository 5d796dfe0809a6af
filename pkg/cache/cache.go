// Package cache stores packed layouts and generated atlases.
//
// Two backends implement [Cache]: [FileCache] for local CLI runs and
// [RedisCache] when several processes (for example server replicas) share
// results. [NullCache] disables caching.
//
// Keys come from a [Keyer] so that every caller derives the same key for
// the same inputs:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(spritesHash, cache.LayoutKeyOpts{Packer: "tree", Padding: 1})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    // reuse the layout
//	}
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default lifetimes for cached entries.
const (
	TTLLayout = 30 * 24 * time.Hour
	TTLAtlas  = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Clearer is implemented by caches that can drop all atlaspack entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultDir returns the directory used by the file cache when none is
// configured.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "atlaspack")
	}
	return filepath.Join(os.TempDir(), "atlaspack-cache")
}

// Open returns a cache for url. An empty url opens a file cache in dir
// (or [DefaultDir]); redis:// and rediss:// URLs open a [RedisCache].
func Open(ctx context.Context, url, dir string) (Cache, error) {
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		c, err := NewRedisCache(ctx, url)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if url != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, url)
	}
	if dir == "" {
		dir = DefaultDir()
	}
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}
