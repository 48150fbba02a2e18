package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davidbz/cinder/internal/observability"
)

// TurnOutcome summarizes a completed turn.
type TurnOutcome struct {
	Config GenerationConfig
	Usage  *UsageRecord
}

// TurnService orchestrates one chat turn: plan the generation config,
// stream the completion through a client and demultiplex the output.
// The caller serializes turns per conversation; this service assumes
// at most one in-flight turn per conversation ID.
type TurnService struct {
	registry ClientRegistry
	planner  Planner
	sessions SessionStore
	demux    StreamDemux
	events   EventPublisher
}

// NewTurnService creates a new turn service (DI constructor).
func NewTurnService(
	registry ClientRegistry,
	planner Planner,
	sessions SessionStore,
	demux StreamDemux,
	events EventPublisher,
) *TurnService {
	return &TurnService{
		registry: registry,
		planner:  planner,
		sessions: sessions,
		demux:    demux,
		events:   events,
	}
}

// Run processes a single turn and forwards the demultiplexed stream to
// the sink. On transport failure the already-forwarded answer text
// stands, the error is returned, and the conversation's last usage is
// left untouched so the next spike check sees the last complete turn.
func (s *TurnService) Run(ctx context.Context, req *TurnRequest, sink TurnSink) (*TurnOutcome, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if req.ConversationID == "" {
		return nil, errors.New("conversation ID cannot be empty")
	}

	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}

	logger := observability.FromContext(ctx)

	last, hasLast, err := s.sessions.Last(ctx, req.ConversationID)
	if err != nil {
		// A broken session store must not fail the turn; fall back to
		// first-turn behavior.
		logger.Warn("failed to read session usage, treating as absent",
			observability.Error(err))
		hasLast = false
	}

	cfg, cls := s.planner.Plan(req.Prompt, last, hasLast)

	logger.Info("turn planned",
		observability.Float64("temperature", cfg.Temperature),
		observability.Int("thought_budget", cfg.ThoughtBudget),
		observability.Int("prompt_length", cls.Length),
		observability.Bool("creative", cls.Creative),
		observability.Bool("factual", cls.Factual),
		observability.Bool("hard", cls.Hard),
		observability.Bool("simple", cls.Simple),
	)

	client, err := s.registry.GetByModel(ctx, req.Model)
	if err != nil {
		return nil, fmt.Errorf("client routing failed: %w", err)
	}

	// Attach the routed client name so downstream log lines carry it.
	ctx = observability.WithClient(ctx, client.Name())
	logger = observability.FromContext(ctx)

	started := time.Now()

	chunks, err := client.Stream(ctx, req, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to stream from client: %w", err)
	}

	usage, err := s.demux.Run(ctx, chunks, sink)
	if err != nil {
		return nil, fmt.Errorf("stream failed: %w", err)
	}

	duration := time.Since(started)
	logger.Info("turn stream finished",
		observability.Duration("duration", duration))

	if usage != nil {
		if recordErr := s.sessions.Record(ctx, req.ConversationID, *usage); recordErr != nil {
			logger.Warn("failed to record session usage",
				observability.Error(recordErr))
		}
	}

	s.publishCompleted(ctx, req, cfg, usage, duration)

	return &TurnOutcome{Config: cfg, Usage: usage}, nil
}

func (s *TurnService) publishCompleted(ctx context.Context, req *TurnRequest, cfg GenerationConfig, usage *UsageRecord, duration time.Duration) {
	if s.events == nil {
		return
	}

	data := map[string]interface{}{
		"conversation_id": req.ConversationID,
		"model":           req.Model,
		"temperature":     cfg.Temperature,
		"thought_budget":  cfg.ThoughtBudget,
		"duration":        duration,
		"finished_at":     time.Now().UTC(),
	}

	if usage != nil {
		data["total_tokens"] = usage.TotalTokens
		data["thought_tokens"] = usage.ThoughtTokens
	}

	s.events.Publish(ctx, "turn_completed", data)
}
