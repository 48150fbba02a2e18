package domain_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/lexicon"
	"github.com/davidbz/cinder/internal/observability"
	"github.com/davidbz/cinder/internal/policy"
	"github.com/davidbz/cinder/internal/provider/registry"
	"github.com/davidbz/cinder/internal/provider/script"
	"github.com/davidbz/cinder/internal/session"
	"github.com/davidbz/cinder/internal/stream"
)

func newService(t *testing.T, client domain.ModelClient, sessions domain.SessionStore) *domain.TurnService {
	t.Helper()

	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(context.Background(), client))

	planner := policy.NewPlanner(lexicon.Default(), 2048)

	return domain.NewTurnService(reg, planner, sessions, stream.NewDemux(), nil)
}

// ctxCaptureClient records the context handed to Stream.
type ctxCaptureClient struct {
	inner *script.Client
	ctx   context.Context
}

func (c *ctxCaptureClient) Stream(ctx context.Context, req *domain.TurnRequest, cfg domain.GenerationConfig) (<-chan domain.StreamChunk, error) {
	c.ctx = ctx
	return c.inner.Stream(ctx, req, cfg)
}

func (c *ctxCaptureClient) Name() string { return c.inner.Name() }

func (c *ctxCaptureClient) IsModelSupported(ctx context.Context, model string) bool {
	return c.inner.IsModelSupported(ctx, model)
}

func (c *ctxCaptureClient) SupportedModels(ctx context.Context) []string {
	return c.inner.SupportedModels(ctx)
}

// capturePublisher records the last published event.
type capturePublisher struct {
	eventType string
	data      map[string]interface{}
}

func (p *capturePublisher) Publish(_ context.Context, eventType string, data map[string]interface{}) {
	p.eventType = eventType
	p.data = data
}

func bufferedSink() (domain.TurnSink, chan string, chan string) {
	thoughts := make(chan string, 128)
	answers := make(chan string, 128)
	return domain.TurnSink{Thoughts: thoughts, Answers: answers}, thoughts, answers
}

func TestTurnService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("completed turn records usage", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		svc := newService(t, script.NewClient(), sessions)

		sink, _, answers := bufferedSink()

		outcome, err := svc.Run(ctx, &domain.TurnRequest{
			ConversationID: "conv-1",
			Model:          "script-1",
			Prompt:         "analyze this failure",
		}, sink)
		require.NoError(t, err)
		require.NotNil(t, outcome.Usage)

		require.InDelta(t, 0.4, outcome.Config.Temperature, 0.0001)
		require.Equal(t, 1024, outcome.Config.ThoughtBudget)

		last, ok, err := sessions.Last(ctx, "conv-1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, outcome.Usage.TotalTokens, last.TotalTokens)

		close(answers)
		var text string
		for s := range answers {
			text += s
		}
		require.Equal(t, "analyze this failure", text)
	})

	t.Run("routed client name is attached to the stream context", func(t *testing.T) {
		capture := &ctxCaptureClient{inner: script.NewClient()}
		svc := newService(t, capture, session.NewMemoryStore())

		sink, _, _ := bufferedSink()

		_, err := svc.Run(ctx, &domain.TurnRequest{
			ConversationID: "conv-1",
			Model:          "script-1",
			Prompt:         "hello",
		}, sink)
		require.NoError(t, err)

		require.Equal(t, "script", observability.GetClient(capture.ctx))
	})

	t.Run("completion event carries the turn latency", func(t *testing.T) {
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, script.NewClient()))

		events := &capturePublisher{}
		svc := domain.NewTurnService(
			reg,
			policy.NewPlanner(lexicon.Default(), 2048),
			session.NewMemoryStore(),
			stream.NewDemux(),
			events,
		)

		sink, _, _ := bufferedSink()

		_, err := svc.Run(ctx, &domain.TurnRequest{
			ConversationID: "conv-1",
			Model:          "script-1",
			Prompt:         "hello",
		}, sink)
		require.NoError(t, err)

		require.Equal(t, "turn_completed", events.eventType)
		require.Contains(t, events.data, "duration")
	})

	t.Run("spiked previous turn forces the medium budget", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.Record(ctx, "conv-1", domain.UsageRecord{TotalTokens: 25000}))

		svc := newService(t, script.NewClient(), sessions)

		prompt := "analyze " + strings.Repeat("the incident timeline in detail ", 14)
		require.Greater(t, len(prompt), 400)

		sink, _, _ := bufferedSink()

		outcome, err := svc.Run(ctx, &domain.TurnRequest{
			ConversationID: "conv-1",
			Model:          "script-1",
			Prompt:         prompt,
		}, sink)
		require.NoError(t, err)

		require.Equal(t, 1024, outcome.Config.ThoughtBudget)
	})

	t.Run("transport failure keeps the last complete usage", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		prior := domain.UsageRecord{TotalTokens: 500}
		require.NoError(t, sessions.Record(ctx, "conv-1", prior))

		failing := script.NewScriptedClient([]domain.StreamChunk{
			{Kind: domain.ChunkAnswer, Text: "partial "},
			{Err: errors.New("connection reset")},
		})
		svc := newService(t, failing, sessions)

		sink, _, answers := bufferedSink()

		_, err := svc.Run(ctx, &domain.TurnRequest{
			ConversationID: "conv-1",
			Model:          "script-1",
			Prompt:         "hello",
		}, sink)
		require.Error(t, err)

		// Partial answer text already emitted stands.
		close(answers)
		var text string
		for s := range answers {
			text += s
		}
		require.Equal(t, "partial ", text)

		// Spike state still reflects the last complete turn.
		last, ok, lastErr := sessions.Last(ctx, "conv-1")
		require.NoError(t, lastErr)
		require.True(t, ok)
		require.Equal(t, prior, last)
	})

	t.Run("unknown model returns an error", func(t *testing.T) {
		svc := newService(t, script.NewClient(), session.NewMemoryStore())

		sink, _, _ := bufferedSink()

		_, err := svc.Run(ctx, &domain.TurnRequest{
			ConversationID: "conv-1",
			Model:          "gpt-unknown",
			Prompt:         "hello",
		}, sink)
		require.Error(t, err)
	})

	t.Run("missing conversation ID returns an error", func(t *testing.T) {
		svc := newService(t, script.NewClient(), session.NewMemoryStore())

		_, err := svc.Run(ctx, &domain.TurnRequest{Model: "script-1", Prompt: "hello"}, domain.TurnSink{})
		require.Error(t, err)
	})

	t.Run("nil request returns an error", func(t *testing.T) {
		svc := newService(t, script.NewClient(), session.NewMemoryStore())

		_, err := svc.Run(ctx, nil, domain.TurnSink{})
		require.Error(t, err)
	})
}
