package driving

import (
	"context"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// ChatService answers one conversational turn grounded in the tenant's
// knowledge index and bounded session memory.
type ChatService interface {
	Chat(ctx context.Context, tenant domain.Tenant, sessionID, message string) (string, error)
}
