package driven

import (
	"context"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// ChatStore persists conversation history per (tenant, session).
type ChatStore interface {
	// Load returns the persisted turns for a session, or an empty slice
	// when the session has no history yet.
	Load(ctx context.Context, tenant domain.Tenant, sessionID string) ([]domain.Turn, error)

	// Save persists the full turn list for a session, replacing any
	// previous history.
	Save(ctx context.Context, tenant domain.Tenant, sessionID string, turns []domain.Turn) error
}
