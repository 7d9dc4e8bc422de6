// Package cache provides caching for settled layouts and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: entries as JSON files under a directory (CLI default)
//   - [RedisCache]: shared cache for servers
//   - [NullCache]: disables caching
//
// # Keys
//
// Keys are built by a [Keyer] from content hashes plus the options that
// influence the result, so changing a force parameter never returns a stale
// layout:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(docJSON), cache.LayoutKeyOpts{Ticks: 300, Charge: -30})
//
// # Retries
//
// [RetryWithBackoff] retries functions returning errors wrapped with
// [Retryable]; it is used for remote document fetches.
package cache

import (
	"context"
	"strings"
	"time"
)

// Default TTLs per entry kind.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
	HTTPTTL     = time.Hour
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// KeyType returns the kind of a key built by a [Keyer] ("layout",
// "artifact" or "http"), ignoring any scope prefix. It labels cache events.
func KeyType(key string) string {
	for _, kind := range []string{"layout", "artifact", "http"} {
		if strings.HasPrefix(key, kind+":") || strings.Contains(key, ":"+kind+":") {
			return kind
		}
	}
	return "other"
}
