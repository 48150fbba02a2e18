package domain

import "context"

// ModelClient represents any streaming LLM backend.
type ModelClient interface {
	// Stream starts a completion for the prompt under the given config
	// and returns an ordered stream of tagged chunks. The channel is
	// closed when the stream ends.
	Stream(ctx context.Context, req *TurnRequest, cfg GenerationConfig) (<-chan StreamChunk, error)

	// Name returns the client identifier.
	Name() string

	// IsModelSupported checks if the client serves the given model.
	IsModelSupported(ctx context.Context, model string) bool

	// SupportedModels returns all models this client serves.
	SupportedModels(ctx context.Context) []string
}

// ClientRegistry manages available model clients.
type ClientRegistry interface {
	// Register adds a client to the registry.
	Register(ctx context.Context, client ModelClient) error

	// Get retrieves a client by name.
	Get(ctx context.Context, name string) (ModelClient, error)

	// GetByModel retrieves a client that serves the given model.
	GetByModel(ctx context.Context, model string) (ModelClient, error)

	// List returns all registered client names.
	List(ctx context.Context) ([]string, error)
}

// SessionStore holds the most recent usage record per conversation.
// Exactly one writer per conversation (the turn-completion step); the
// spike guard only reads.
type SessionStore interface {
	// Last returns the previous turn's usage for the conversation, or
	// ok=false on the first turn.
	Last(ctx context.Context, conversationID string) (UsageRecord, bool, error)

	// Record overwrites the conversation's last usage.
	Record(ctx context.Context, conversationID string, usage UsageRecord) error
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

// Planner computes the generation config for one turn from the prompt
// and the previous turn's usage.
type Planner interface {
	Plan(prompt string, last UsageRecord, hasLast bool) (GenerationConfig, Classification)
}

// TurnSink receives the demultiplexed output channels of a turn. Nil
// channels are skipped; the presentation layer owns rendering and
// persistence decisions.
type TurnSink struct {
	Thoughts chan<- string
	Answers  chan<- string
	Safety   chan<- string
}

// StreamDemux consumes a client's chunk stream and splits it into the
// sink channels. It returns the final usage report on clean
// completion, or an error when the transport failed or the context was
// cancelled, in which case usage is nil and must not be recorded.
type StreamDemux interface {
	Run(ctx context.Context, chunks <-chan StreamChunk, sink TurnSink) (*UsageRecord, error)
}
