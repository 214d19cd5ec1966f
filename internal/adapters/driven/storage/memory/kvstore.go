// Package memory provides in-memory store implementations, used for
// tests and for ephemeral single-process runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
)

// Ensure KVStore implements the interface.
var _ driven.KVStore = (*KVStore)(nil)

// entry is a stored value with its expiry. A zero expiry never expires.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// KVStore is an in-memory implementation of driven.KVStore with lazy
// expiration: expired entries are dropped on read.
type KVStore struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewKVStore creates a new in-memory TTL store.
func NewKVStore() *KVStore {
	return &KVStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetClock overrides the store's clock. Useful for expiry tests.
func (s *KVStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Set stores value under key. A zero ttl means the entry never expires.
func (s *KVStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// Get retrieves the value for key, or domain.ErrNotFound when the key is
// absent or expired.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close releases resources.
func (s *KVStore) Close() error {
	return nil
}
