package driven

import (
	"context"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// KnowledgeStore manages per-tenant knowledge indexes.
type KnowledgeStore interface {
	// EnsureIndex loads the tenant's index, creating and persisting an
	// empty one if absent. It is idempotent and never overwrites an
	// existing index.
	EnsureIndex(ctx context.Context, tenant domain.Tenant) (KnowledgeIndex, error)
}

// KnowledgeIndex is one tenant's growable document set. It is append-only:
// no delete or update is exposed, matching the assistant's need for a
// growing, never-shrinking context.
type KnowledgeIndex interface {
	// Insert appends one document, embeds it, and persists synchronously
	// before returning. Callers observe either the pre- or post-insert
	// durable state, never a half-written one.
	Insert(ctx context.Context, text string, metadata map[string]string) error

	// Search returns the k documents most similar to the query.
	Search(ctx context.Context, query string, k int) ([]domain.KnowledgeHit, error)

	// Len returns the number of ingested documents.
	Len() int

	// Persist flushes the index to durable storage. Insert already
	// persists; this exists for orchestration points that persist
	// defensively after a batch of work.
	Persist() error
}
