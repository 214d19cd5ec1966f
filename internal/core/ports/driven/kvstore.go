package driven

import (
	"context"
	"time"
)

// KVStore is a key-value store with per-key expiration. It is the only
// shared mutable resource across requests; all writes are independent
// key writes, there are no multi-key transactions.
//
// Get returns domain.ErrNotFound for absent or expired keys.
type KVStore interface {
	// Set stores value under key. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves the value for key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}
