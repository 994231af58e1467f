// Package cache stores fetched pages that never change for a given key.
//
// Release pages are never cached: they are the source of the version that
// drives the idempotency gate. The pages that are cached are the ones whose
// URL or key embeds the release tag, such as expanded-asset fragments and
// README bodies fetched for a specific version, so a retried run can reuse
// them.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entry files under the XDG cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for several mirrors on one host
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// HTTPKey builds the key for a cached HTTP body.
func HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
