// Package cache provides byte caching backends and a read-through decorator
// that serves entity definitions from them.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is the contract all cache backends implement.
type Cache interface {
	// Get retrieves a value from the cache.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with a TTL. A zero TTL applies the
	// backend default; a negative TTL stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// Config holds common configuration for cache backends.
type Config struct {
	// TTL is the default time-to-live for cached items.
	TTL time.Duration
	// Prefix is prepended to all cache keys.
	Prefix string
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:    5 * time.Minute,
		Prefix: "soak:",
	}
}

// MissError is returned when a key is not found in the cache.
type MissError struct {
	Key string
}

func (e *MissError) Error() string {
	return "cache miss: " + e.Key
}

// IsMiss checks if an error is a cache miss.
func IsMiss(err error) bool {
	var miss *MissError
	return errors.As(err, &miss)
}
