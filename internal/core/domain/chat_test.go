package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemory(t *testing.T) {
	t.Run("seeds the preamble", func(t *testing.T) {
		m := NewMemory(0)

		require.Len(t, m.Turns, 1)
		assert.Equal(t, Preamble, m.Turns[0].Text)
		assert.Equal(t, DefaultTokenBudget, m.TokenBudget)
	})

	t.Run("keeps an explicit budget", func(t *testing.T) {
		m := NewMemory(123)
		assert.Equal(t, 123, m.TokenBudget)
	})
}

func TestMemoryAppend(t *testing.T) {
	t.Run("appends in order", func(t *testing.T) {
		m := NewMemory(0)
		m.Append(RoleUser, "hello")
		m.Append(RoleAssistant, "hi there")

		history := m.History()
		require.Len(t, history, 2)
		assert.Equal(t, RoleUser, history[0].Role)
		assert.Equal(t, "hello", history[0].Text)
		assert.Equal(t, RoleAssistant, history[1].Role)
	})

	t.Run("evicts oldest non-preamble turn first", func(t *testing.T) {
		// Budget fits the preamble plus roughly two filler turns.
		budget := EstimateTokens(Preamble) + 2*25
		m := NewMemory(budget)

		filler := strings.Repeat("x", 100) // ~25 tokens
		m.Append(RoleUser, "first "+filler)
		m.Append(RoleAssistant, "second "+filler)
		m.Append(RoleUser, "third "+filler)

		assert.Equal(t, Preamble, m.Turns[0].Text, "preamble survives eviction")
		for _, turn := range m.History() {
			assert.NotContains(t, turn.Text, "first ", "oldest turn is evicted")
		}
		assert.LessOrEqual(t, m.EstimatedTokens(), m.TokenBudget)
	})

	t.Run("never evicts the preamble", func(t *testing.T) {
		m := NewMemory(1) // absurdly small budget
		m.Append(RoleUser, strings.Repeat("y", 400))

		require.NotEmpty(t, m.Turns)
		assert.Equal(t, Preamble, m.Turns[0].Text)
		// The latest turn is kept even when over budget; there is nothing
		// else left to evict.
		assert.Len(t, m.Turns, 2)
	})
}

func TestRestoreMemory(t *testing.T) {
	t.Run("re-seeds preamble for empty history", func(t *testing.T) {
		m := RestoreMemory(nil, 0)
		require.Len(t, m.Turns, 1)
		assert.Equal(t, Preamble, m.Turns[0].Text)
	})

	t.Run("does not duplicate a persisted preamble", func(t *testing.T) {
		persisted := []Turn{
			{Role: RoleUser, Text: Preamble},
			{Role: RoleUser, Text: "question"},
		}
		m := RestoreMemory(persisted, 0)

		require.Len(t, m.Turns, 2)
		assert.Equal(t, "question", m.Turns[1].Text)
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("ab"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("z", 100)))
}
