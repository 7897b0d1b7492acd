// Package cache provides a content-addressed artifact cache.
//
// The preview server uses it to reuse rendered images: a render of an
// identical descriptor with identical tone-mapping parameters is served from
// disk instead of re-running the chaos game.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-blob store with optional expiration. Implementations must
// be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// RenderKey derives a cache key for a rendered image from the raw descriptor
// bytes and the render parameters. Any difference in either produces a
// different key.
func RenderKey(descriptor []byte, params ...interface{}) string {
	return hashKey("render", string(descriptor), params)
}
