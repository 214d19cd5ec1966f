package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weave/internal/core/domain"
)

func newTestStore(t *testing.T) *KVStore {
	t.Helper()
	store, err := NewKVStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKVStoreSetGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("round-trips a value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "absent")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("set overwrites value and ttl", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("v1"), time.Hour))
		require.NoError(t, store.Set(ctx, "k", []byte("v2"), 0))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})
}

func TestKVStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	current := time.Now()
	store.SetClock(func() time.Time { return current })

	require.NoError(t, store.Set(ctx, "ttl", []byte("v"), 600*time.Second))

	t.Run("readable inside the TTL window", func(t *testing.T) {
		current = current.Add(599 * time.Second)
		_, err := store.Get(ctx, "ttl")
		assert.NoError(t, err)
	})

	t.Run("gone after expiry", func(t *testing.T) {
		current = current.Add(2 * time.Second)
		_, err := store.Get(ctx, "ttl")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestKVStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestKVStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewKVStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, store.Close())

	reopened, err := NewKVStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
