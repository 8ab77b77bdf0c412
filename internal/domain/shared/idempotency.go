package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys that already produced a response so
// that retried pay and finalize calls are answered without re-executing them.
type IdempotencyStore interface {
	// Reserve claims the key for ttl.
	// Returns true if the key was newly claimed, false if it is already taken.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the response recorded for a claimed key.
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error

	// Lookup returns the stored response for the key, nil when the key is
	// claimed but still in flight, and found=false when the key is unknown.
	Lookup(ctx context.Context, key string) (response []byte, found bool, err error)

	// Release drops a claim whose request failed, so it can be retried.
	Release(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key and its response are remembered
	TTL time.Duration
	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
