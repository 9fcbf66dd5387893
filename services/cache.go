package services

import (
	"context"
	"time"
)

// Cache is the minimal TTL key/value contract checkout sessions and payment
// tokens need. Backing it with Redis keeps a callback valid no matter which
// instance it lands on.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns the value and whether the key exists. A missing key is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Del(ctx context.Context, key string) error
}
