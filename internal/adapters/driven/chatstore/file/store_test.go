package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weave/internal/core/domain"
)

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	tenant := domain.Tenant{OrgID: "orgA", UserID: "u1"}

	t.Run("missing session loads as empty", func(t *testing.T) {
		store := NewStore(t.TempDir())
		turns, err := store.Load(ctx, tenant, "s1")
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("round-trips a conversation", func(t *testing.T) {
		store := NewStore(t.TempDir())
		turns := []domain.Turn{
			{Role: domain.RoleUser, Text: domain.Preamble},
			{Role: domain.RoleUser, Text: "hello"},
			{Role: domain.RoleAssistant, Text: "hi"},
		}
		require.NoError(t, store.Save(ctx, tenant, "s1", turns))

		loaded, err := store.Load(ctx, tenant, "s1")
		require.NoError(t, err)
		assert.Equal(t, turns, loaded)
	})

	t.Run("save replaces previous history", func(t *testing.T) {
		store := NewStore(t.TempDir())
		require.NoError(t, store.Save(ctx, tenant, "s1", []domain.Turn{{Role: domain.RoleUser, Text: "old"}}))
		require.NoError(t, store.Save(ctx, tenant, "s1", []domain.Turn{{Role: domain.RoleUser, Text: "new"}}))

		loaded, err := store.Load(ctx, tenant, "s1")
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "new", loaded[0].Text)
	})

	t.Run("sessions and tenants do not collide", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStore(dir)
		require.NoError(t, store.Save(ctx, tenant, "s1", []domain.Turn{{Role: domain.RoleUser, Text: "a"}}))
		require.NoError(t, store.Save(ctx, tenant, "s2", []domain.Turn{{Role: domain.RoleUser, Text: "b"}}))
		require.NoError(t, store.Save(ctx, domain.Tenant{OrgID: "orgB", UserID: "u1"}, "s1", []domain.Turn{{Role: domain.RoleUser, Text: "c"}}))

		path := filepath.Join(dir, "rag", "org_orgA", "user_u1", "chat_session_s1.json")
		_, err := os.Stat(path)
		assert.NoError(t, err)

		loaded, err := store.Load(ctx, tenant, "s2")
		require.NoError(t, err)
		assert.Equal(t, "b", loaded[0].Text)
	})

	t.Run("rejects path-escaping session ids", func(t *testing.T) {
		store := NewStore(t.TempDir())
		err := store.Save(ctx, tenant, "../escape", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = store.Load(ctx, tenant, `..\escape`)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects path-escaping tenant ids", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStore(dir)
		turns := []domain.Turn{{Role: domain.RoleUser, Text: "a"}}

		err := store.Save(ctx, domain.Tenant{OrgID: "a/../../../escaped", UserID: "u1"}, "s1", turns)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		// Nothing may land outside the data dir.
		_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escaped"))
		assert.ErrorIs(t, err, os.ErrNotExist)

		err = store.Save(ctx, domain.Tenant{OrgID: "orgA", UserID: `..\u1`}, "s1", turns)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = store.Load(ctx, domain.Tenant{OrgID: "..", UserID: "u1"}, "s1")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
