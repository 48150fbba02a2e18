// Package stream contains the demultiplexer that splits a model
// client's chunk stream into reasoning-trace, answer and safety
// channels for the presentation layer.
//
// The demultiplexer is a single-pass state machine: idle until the
// first chunk, streaming while forwarding, and terminally done when
// the source closes or errored when the transport fails or the turn is
// cancelled. The terminal state is conveyed through Run's error value.
package stream

import (
	"context"

	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/observability"
)

// Demux forwards chunks in arrival order, preserving per-channel
// ordering without global reordering, and never retracts text already
// emitted. All per-stream state lives in Run, so one Demux serves
// concurrent turns.
type Demux struct{}

// NewDemux creates a demultiplexer (DI constructor).
func NewDemux() *Demux {
	return &Demux{}
}

// Run consumes the chunk stream until it closes, errors or the context
// is cancelled. The usage report carried by a metadata chunk is
// returned only on clean completion; an errored or cancelled stream
// returns a nil usage so partial turns are never recorded.
func (d *Demux) Run(ctx context.Context, chunks <-chan domain.StreamChunk, sink domain.TurnSink) (*domain.UsageRecord, error) {
	logger := observability.FromContext(ctx)

	var usage *domain.UsageRecord

	for {
		select {
		case <-ctx.Done():
			logger.Info("stream cancelled, stopping forwarding")
			return nil, ctx.Err()

		case chunk, ok := <-chunks:
			if !ok {
				return usage, nil
			}

			if chunk.Err != nil {
				logger.Error("stream transport failed",
					observability.Error(chunk.Err))
				return nil, chunk.Err
			}

			switch chunk.Kind {
			case domain.ChunkThought:
				if !forward(ctx, sink.Thoughts, chunk.Text) {
					return nil, ctx.Err()
				}
			case domain.ChunkAnswer:
				if !forward(ctx, sink.Answers, chunk.Text) {
					return nil, ctx.Err()
				}
			case domain.ChunkSafety:
				if !forward(ctx, sink.Safety, chunk.Safety) {
					return nil, ctx.Err()
				}
			case domain.ChunkMetadata:
				if chunk.Usage != nil {
					u := *chunk.Usage
					usage = &u
				}
			}
		}
	}
}

// forward sends text to a sink channel, honoring cancellation. Nil
// channels drop the value; the sink owner opted out of that stream.
func forward(ctx context.Context, ch chan<- string, text string) bool {
	if ch == nil {
		return true
	}

	select {
	case ch <- text:
		return true
	case <-ctx.Done():
		return false
	}
}
