// Package openai adapts the official OpenAI SDK to the
// domain.ModelClient interface. It converts the generation config to
// SDK parameters and tags the streamed output into thought, answer,
// safety and metadata chunks.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/observability"
)

const (
	// Fixed budgets at or below this map to low reasoning effort.
	lowEffortMaxTokens = 1024
	// Fixed budgets at or below this map to medium reasoning effort.
	mediumEffortMaxTokens = 8192
)

// Client implements the domain.ModelClient interface for OpenAI.
type Client struct {
	client openai.Client
	name   string
}

// NewClient creates a new OpenAI client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	return &Client{
		client: openai.NewClient(opts...),
		name:   "openai",
	}, nil
}

// Stream starts a streaming completion and converts SDK chunks to
// tagged domain chunks. The usage report arrives as a terminal
// metadata chunk when the provider includes it.
func (c *Client) Stream(ctx context.Context, req *domain.TurnRequest, cfg domain.GenerationConfig) (<-chan domain.StreamChunk, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI streaming API",
		observability.Int("thought_budget", cfg.ThoughtBudget),
	)

	params := c.toSDKParams(req, cfg)
	stream := c.client.Chat.Completions.NewStreaming(ctx, params)

	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)
		defer logger.Debug("OpenAI stream completed")

		for stream.Next() {
			chunk := stream.Current()

			if len(chunk.Choices) > 0 {
				choice := chunk.Choices[0]

				if thought := reasoningDelta(choice.Delta); thought != "" {
					if !emit(ctx, chunks, domain.StreamChunk{Kind: domain.ChunkThought, Text: thought}) {
						return
					}
				}

				if choice.Delta.Content != "" {
					if !emit(ctx, chunks, domain.StreamChunk{Kind: domain.ChunkAnswer, Text: choice.Delta.Content}) {
						return
					}
				}

				if choice.FinishReason == "content_filter" {
					if !emit(ctx, chunks, domain.StreamChunk{Kind: domain.ChunkSafety, Safety: "content_filter"}) {
						return
					}
				}
			}

			// Usage rides on the final chunk when stream options
			// request it.
			if chunk.Usage.TotalTokens > 0 {
				usage := &domain.UsageRecord{
					TotalTokens:   int(chunk.Usage.TotalTokens),
					ThoughtTokens: int(chunk.Usage.CompletionTokensDetails.ReasoningTokens),
					Timestamp:     time.Now(),
				}
				if !emit(ctx, chunks, domain.StreamChunk{Kind: domain.ChunkMetadata, Usage: usage}) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil && !errors.Is(err, io.EOF) {
			emit(ctx, chunks, domain.StreamChunk{Err: fmt.Errorf("OpenAI stream error: %w", err)})
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
	for _, prefix := range []string{"gpt-", "o1", "o3", "o4", "chatgpt-"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// SupportedModels returns the models pre-registered for routing.
func (c *Client) SupportedModels(_ context.Context) []string {
	return []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "o3", "o3-mini", "o4-mini"}
}

func (c *Client) toSDKParams(req *domain.TurnRequest, cfg domain.GenerationConfig) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}

	if cfg.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(cfg.MaxOutputTokens))
	}

	// Reasoning models reject temperature and take the budget as an
	// effort tier instead; everything else gets plain sampling.
	if isReasoningModel(req.Model) {
		params.ReasoningEffort = toReasoningEffort(cfg.ThoughtBudget)
	} else if cfg.Temperature > 0 {
		params.Temperature = openai.Float(cfg.Temperature)
	}

	return params
}

// isReasoningModel reports whether the model family accepts reasoning
// parameters. Heuristic on the model id, like capability detection
// elsewhere in the ecosystem.
func isReasoningModel(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// toReasoningEffort converts the numeric thought budget to the closest
// effort tier. The OpenAI API takes no token-denominated budget, so
// the mapping is coarse: disabled and open budgets pin the extremes,
// fixed budgets pick a tier by size.
func toReasoningEffort(thoughtBudget int) openai.ReasoningEffort {
	switch {
	case thoughtBudget < 0:
		return openai.ReasoningEffortHigh
	case thoughtBudget == 0:
		return openai.ReasoningEffort("minimal")
	case thoughtBudget <= lowEffortMaxTokens:
		return openai.ReasoningEffortLow
	case thoughtBudget <= mediumEffortMaxTokens:
		return openai.ReasoningEffortMedium
	default:
		return openai.ReasoningEffortHigh
	}
}

// reasoningDelta extracts reasoning text from OpenAI-compatible
// backends (DeepSeek and friends) that stream it as an extra
// "reasoning_content" delta field. Plain OpenAI models do not stream
// reasoning text, so this is usually empty.
func reasoningDelta(delta openai.ChatCompletionChunkChoiceDelta) string {
	field, ok := delta.JSON.ExtraFields["reasoning_content"]
	if !ok {
		return ""
	}

	var text string
	if err := json.Unmarshal([]byte(field.Raw()), &text); err != nil {
		return ""
	}
	return text
}

func emit(ctx context.Context, chunks chan<- domain.StreamChunk, chunk domain.StreamChunk) bool {
	select {
	case chunks <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
