// Package script provides a deterministic model client that plays back
// a scripted chunk sequence. It implements the domain.ModelClient
// interface without external calls, for tests and local development.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/observability"
)

const (
	clientName = "script"
	modelName  = "script-1"
	chunkDelay = 10 * time.Millisecond
)

// Client implements the domain.ModelClient interface with scripted
// output. When no script is set it synthesizes one from the prompt:
// a short thought trace, the prompt echoed word by word as the answer,
// and a terminal usage report.
type Client struct {
	name            string
	supportedModels map[string]bool
	script          []domain.StreamChunk
	delay           time.Duration
}

// NewClient creates a script client with synthesized output.
func NewClient() *Client {
	return &Client{
		name: clientName,
		supportedModels: map[string]bool{
			modelName: true,
		},
		delay: chunkDelay,
	}
}

// NewScriptedClient creates a client that replays exactly the given
// chunks, with no inter-chunk delay. Used by tests.
func NewScriptedClient(chunks []domain.StreamChunk) *Client {
	return &Client{
		name: clientName,
		supportedModels: map[string]bool{
			modelName: true,
		},
		script: chunks,
	}
}

// Stream plays back the script as a chunk channel.
func (c *Client) Stream(ctx context.Context, req *domain.TurnRequest, cfg domain.GenerationConfig) (<-chan domain.StreamChunk, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if !c.supportedModels[req.Model] {
		return nil, fmt.Errorf("model %s is not supported by script client", req.Model)
	}

	logger := observability.FromContext(ctx)
	logger.Debug("streaming scripted response",
		observability.Int("thought_budget", cfg.ThoughtBudget),
	)

	script := c.script
	if script == nil {
		script = synthesize(req.Prompt, cfg)
	}

	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)

		for _, chunk := range script {
			select {
			case <-ctx.Done():
				return
			case chunks <- chunk:
				if c.delay > 0 {
					time.Sleep(c.delay)
				}
			}
		}
	}()

	return chunks, nil
}

// Name returns the client identifier.
func (c *Client) Name() string {
	return c.name
}

// IsModelSupported checks if the client serves the given model.
func (c *Client) IsModelSupported(_ context.Context, model string) bool {
	return c.supportedModels[model]
}

// SupportedModels returns all models this client serves.
func (c *Client) SupportedModels(_ context.Context) []string {
	models := make([]string, 0, len(c.supportedModels))
	for model := range c.supportedModels {
		models = append(models, model)
	}
	return models
}

// synthesize builds a playback script from the prompt. Thought chunks
// are emitted only when the config allows reasoning.
func synthesize(prompt string, cfg domain.GenerationConfig) []domain.StreamChunk {
	var script []domain.StreamChunk

	thoughtTokens := 0
	if cfg.ThoughtBudget != 0 {
		script = append(script,
			domain.StreamChunk{Kind: domain.ChunkThought, Text: "Considering the request. "},
			domain.StreamChunk{Kind: domain.ChunkThought, Text: "Composing an echo reply."},
		)
		thoughtTokens = 2
	}

	words := strings.Fields(prompt)
	for i, word := range words {
		delta := word
		if i < len(words)-1 {
			delta += " "
		}
		script = append(script, domain.StreamChunk{Kind: domain.ChunkAnswer, Text: delta})
	}

	script = append(script, domain.StreamChunk{
		Kind: domain.ChunkMetadata,
		Usage: &domain.UsageRecord{
			TotalTokens:   len(words)*2 + thoughtTokens,
			ThoughtTokens: thoughtTokens,
			Timestamp:     time.Now(),
		},
	})

	return script
}
