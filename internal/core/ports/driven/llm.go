package driven

import (
	"context"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// LLMService provides the generation capability consumed by the chat
// orchestrator. The model call itself is opaque to this system.
type LLMService interface {
	// Chat conducts a multi-turn conversation. The system context carries
	// the retrieval-augmented knowledge; history is the bounded memory.
	Chat(ctx context.Context, systemContext string, history []domain.Turn, message string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
