package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// DeleteIdempotency releases a previously claimed key so the request id
	// can be resubmitted.
	DeleteIdempotency(ctx context.Context, key string) error

	// GetCached returns the cached value for key, or nil on miss.
	GetCached(ctx context.Context, key string) ([]byte, error)

	// SetCached stores value under key with the given TTL.
	SetCached(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
