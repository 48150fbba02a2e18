package domain

import "time"

// TurnRequest represents one user chat turn submitted for completion.
type TurnRequest struct {
	ConversationID string `json:"conversation_id"`
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
}

// Classification holds the lexical signals derived from a prompt.
// Flags are not mutually exclusive; precedence is applied by the
// temperature and budget rules, not here.
type Classification struct {
	Creative bool
	Factual  bool
	Hard     bool
	Simple   bool
	// HardHits counts distinct hard hints matched, used to grade
	// hard-signal strength.
	HardHits int
	// Length is the character count of the normalized prompt.
	Length int
}

// BudgetKind discriminates the thought-budget variants.
type BudgetKind int

const (
	// BudgetDisabled turns reasoning off entirely.
	BudgetDisabled BudgetKind = iota
	// BudgetFixed caps reasoning at Tokens.
	BudgetFixed
	// BudgetModelChosen lets the model decide up to the provider's
	// own ceiling.
	BudgetModelChosen
)

// ThoughtBudget is the reasoning-token allowance for one turn.
// The provider sentinel encoding (-1 for "model-chosen") is produced
// only at the generation-config boundary; everywhere else the tagged
// form avoids accidental numeric comparisons against the sentinel.
type ThoughtBudget struct {
	Kind   BudgetKind
	Tokens int
}

// DisabledBudget returns a budget that disables reasoning.
func DisabledBudget() ThoughtBudget {
	return ThoughtBudget{Kind: BudgetDisabled}
}

// FixedBudget returns a budget capped at n tokens.
func FixedBudget(n int) ThoughtBudget {
	return ThoughtBudget{Kind: BudgetFixed, Tokens: n}
}

// ModelChosenBudget returns an open budget.
func ModelChosenBudget() ThoughtBudget {
	return ThoughtBudget{Kind: BudgetModelChosen}
}

// Encode converts the budget to the provider wire convention:
// -1 for model-chosen, 0 for disabled, otherwise the token count.
func (b ThoughtBudget) Encode() int {
	switch b.Kind {
	case BudgetModelChosen:
		return -1
	case BudgetDisabled:
		return 0
	default:
		return b.Tokens
	}
}

// GenerationConfig is the sampling configuration handed to the model
// client. Immutable once built; consumed exactly once per turn.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	ThoughtBudget   int     `json:"thought_budget"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

// UsageRecord is the token accounting reported by the provider for one
// completed turn.
type UsageRecord struct {
	TotalTokens   int       `json:"total_tokens"`
	ThoughtTokens int       `json:"thought_tokens"`
	Timestamp     time.Time `json:"timestamp"`
}

// ChunkKind tags one unit of a streamed model response.
type ChunkKind int

const (
	// ChunkThought carries reasoning-trace text, never shown inline.
	ChunkThought ChunkKind = iota
	// ChunkAnswer carries user-visible answer text.
	ChunkAnswer
	// ChunkSafety carries moderation information.
	ChunkSafety
	// ChunkMetadata carries the final usage report, typically terminal.
	ChunkMetadata
)

// StreamChunk represents a single streamed response unit. Exactly one
// payload field is meaningful for a given Kind. Err is set by clients
// on transport failure and terminates the stream.
type StreamChunk struct {
	Kind   ChunkKind
	Text   string
	Safety string
	Usage  *UsageRecord
	Err    error
}
