package domain

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleSystem is the retrieval-augmented system context.
	RoleSystem Role = "system"
	// RoleUser is the end user.
	RoleUser Role = "user"
	// RoleAssistant is the generated reply.
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Preamble is the fixed instruction seeded into every conversation.
// It is always present and never evicted.
const Preamble = "You should always consult the knowledge context before giving any response. " +
	"Always be descriptive and give formatted responses. " +
	"Do not mention the knowledge context or the tools you are using."

// DefaultTokenBudget bounds conversation memory, measured in estimated tokens.
const DefaultTokenBudget = 5000

// Memory is a bounded per-session conversation history. The first turn is
// the seeded preamble; eviction removes the oldest non-preamble turns first
// once the token budget is exceeded.
type Memory struct {
	// Turns is the ordered history, preamble first.
	Turns []Turn
	// TokenBudget is the maximum estimated token count. Zero means
	// DefaultTokenBudget.
	TokenBudget int
}

// NewMemory creates a memory seeded with the preamble.
func NewMemory(budget int) *Memory {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	return &Memory{
		Turns:       []Turn{{Role: RoleUser, Text: Preamble}},
		TokenBudget: budget,
	}
}

// RestoreMemory rebuilds a memory from persisted turns, re-seeding the
// preamble if the persisted history lacks it.
func RestoreMemory(turns []Turn, budget int) *Memory {
	m := NewMemory(budget)
	if len(turns) > 0 && turns[0].Text == Preamble {
		turns = turns[1:]
	}
	m.Turns = append(m.Turns, turns...)
	return m
}

// Append adds a turn and evicts the oldest non-preamble turns until the
// history fits the token budget. The preamble is never evicted.
func (m *Memory) Append(role Role, text string) {
	m.Turns = append(m.Turns, Turn{Role: role, Text: text})
	for m.EstimatedTokens() > m.TokenBudget && len(m.Turns) > 2 {
		// Index 0 is the preamble.
		m.Turns = append(m.Turns[:1], m.Turns[2:]...)
	}
}

// History returns the turns after the preamble.
func (m *Memory) History() []Turn {
	if len(m.Turns) == 0 {
		return nil
	}
	return m.Turns[1:]
}

// EstimatedTokens returns a rough token count for the whole history.
func (m *Memory) EstimatedTokens() int {
	total := 0
	for _, t := range m.Turns {
		total += EstimateTokens(t.Text)
	}
	return total
}

// EstimateTokens approximates the token count of text. Four characters
// per token is the conventional estimate for English prose; exact
// tokenisation belongs to the model, not this layer.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && text != "" {
		n = 1
	}
	return n
}
