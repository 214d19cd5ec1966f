package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
	"github.com/custodia-labs/weave/internal/core/ports/driving"
	"github.com/custodia-labs/weave/internal/logger"
)

// retrievalK is how many knowledge documents ground one chat turn.
const retrievalK = 4

// Ensure Chat implements the interface.
var _ driving.ChatService = (*Chat)(nil)

// Chat composes conversation memory, the knowledge index and the
// generation capability into one chat turn.
//
// Turns for the same session are serialised by a per-session lock so
// concurrent calls cannot interleave memory reads and writes and lose
// a turn.
type Chat struct {
	knowledge driven.KnowledgeStore
	chatStore driven.ChatStore
	llm       driven.LLMService
	budget    int

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewChat creates the chat orchestrator. A budget of zero uses
// domain.DefaultTokenBudget.
func NewChat(knowledge driven.KnowledgeStore, chatStore driven.ChatStore, llm driven.LLMService, budget int) *Chat {
	return &Chat{
		knowledge: knowledge,
		chatStore: chatStore,
		llm:       llm,
		budget:    budget,
		sessions:  make(map[string]*sync.Mutex),
	}
}

// Chat answers one conversational turn: load memory, ensure the tenant
// index, retrieve grounding context, generate, append the (user,
// assistant) pair under the token budget, persist memory then index.
func (c *Chat) Chat(ctx context.Context, tenant domain.Tenant, sessionID, message string) (string, error) {
	if c.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if !tenant.IsValid() || sessionID == "" {
		return "", fmt.Errorf("%w: org_id, user_id and chat_session_id are required", domain.ErrInvalidInput)
	}

	lock := c.sessionLock(tenant, sessionID)
	lock.Lock()
	defer lock.Unlock()

	turns, err := c.chatStore.Load(ctx, tenant, sessionID)
	if err != nil {
		return "", fmt.Errorf("load memory: %w", err)
	}
	memory := domain.RestoreMemory(turns, c.budget)

	index, err := c.knowledge.EnsureIndex(ctx, tenant)
	if err != nil {
		return "", fmt.Errorf("ensure index: %w", err)
	}

	systemContext, err := c.buildContext(ctx, index, message)
	if err != nil {
		return "", err
	}

	reply, err := c.llm.Chat(ctx, systemContext, memory.History(), message)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	memory.Append(domain.RoleUser, message)
	memory.Append(domain.RoleAssistant, reply)

	if err := c.chatStore.Save(ctx, tenant, sessionID, memory.Turns); err != nil {
		return "", fmt.Errorf("persist memory: %w", err)
	}
	if err := index.Persist(); err != nil {
		return "", fmt.Errorf("persist index: %w", err)
	}

	return reply, nil
}

// buildContext retrieves the most similar knowledge documents and folds
// them into the system context. Without an embedding service the chat
// degrades to memory-only grounding.
func (c *Chat) buildContext(ctx context.Context, index driven.KnowledgeIndex, message string) (string, error) {
	hits, err := index.Search(ctx, message, retrievalK)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			logger.Debug("retrieval skipped: %v", err)
			return domain.Preamble, nil
		}
		return "", fmt.Errorf("search index: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(domain.Preamble)
	if len(hits) > 0 {
		sb.WriteString("\n\nKnowledge context:\n")
		for _, hit := range hits {
			sb.WriteString("---\n")
			sb.WriteString(hit.Document.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func (c *Chat) sessionLock(tenant domain.Tenant, sessionID string) *sync.Mutex {
	key := fmt.Sprintf("org:%s_user:%s_session:%s", tenant.OrgID, tenant.UserID, sessionID)
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.sessions[key]
	if !ok {
		lock = &sync.Mutex{}
		c.sessions[key] = lock
	}
	return lock
}
