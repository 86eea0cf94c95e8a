package providers

import (
	"context"
	"time"
)

// CacheProvider defines the interface for caching provider responses
type CacheProvider interface {
	// Get retrieves a value from cache; returns a nil slice on miss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error
}
