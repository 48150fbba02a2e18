package stream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/stream"
)

func feed(chunks ...domain.StreamChunk) <-chan domain.StreamChunk {
	ch := make(chan domain.StreamChunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func drain(ch chan string) []string {
	close(ch)
	var out []string
	for s := range ch {
		out = append(out, s)
	}
	return out
}

func TestDemux_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("splits chunks by kind preserving per-channel order", func(t *testing.T) {
		thoughts := make(chan string, 8)
		answers := make(chan string, 8)
		safety := make(chan string, 8)

		usage, err := stream.NewDemux().Run(ctx, feed(
			domain.StreamChunk{Kind: domain.ChunkThought, Text: "step 1. "},
			domain.StreamChunk{Kind: domain.ChunkAnswer, Text: "The "},
			domain.StreamChunk{Kind: domain.ChunkThought, Text: "step 2."},
			domain.StreamChunk{Kind: domain.ChunkAnswer, Text: "answer."},
			domain.StreamChunk{Kind: domain.ChunkSafety, Safety: "flagged"},
			domain.StreamChunk{Kind: domain.ChunkMetadata, Usage: &domain.UsageRecord{TotalTokens: 42, ThoughtTokens: 10}},
		), domain.TurnSink{Thoughts: thoughts, Answers: answers, Safety: safety})

		require.NoError(t, err)
		require.NotNil(t, usage)
		require.Equal(t, 42, usage.TotalTokens)
		require.Equal(t, 10, usage.ThoughtTokens)

		require.Equal(t, []string{"step 1. ", "step 2."}, drain(thoughts))
		require.Equal(t, []string{"The ", "answer."}, drain(answers))
		require.Equal(t, []string{"flagged"}, drain(safety))
	})

	t.Run("thoughts never reach the answer channel", func(t *testing.T) {
		answers := make(chan string, 8)

		_, err := stream.NewDemux().Run(ctx, feed(
			domain.StreamChunk{Kind: domain.ChunkThought, Text: "hidden"},
			domain.StreamChunk{Kind: domain.ChunkAnswer, Text: "visible"},
		), domain.TurnSink{Answers: answers})

		require.NoError(t, err)
		require.Equal(t, []string{"visible"}, drain(answers))
	})

	t.Run("transport error keeps partial answers and drops usage", func(t *testing.T) {
		answers := make(chan string, 8)

		usage, err := stream.NewDemux().Run(ctx, feed(
			domain.StreamChunk{Kind: domain.ChunkAnswer, Text: "partial "},
			domain.StreamChunk{Kind: domain.ChunkMetadata, Usage: &domain.UsageRecord{TotalTokens: 999}},
			domain.StreamChunk{Err: errors.New("connection reset")},
		), domain.TurnSink{Answers: answers})

		require.Error(t, err)
		require.Nil(t, usage)
		require.Equal(t, []string{"partial "}, drain(answers))
	})

	t.Run("stream without metadata completes with nil usage", func(t *testing.T) {
		usage, err := stream.NewDemux().Run(ctx, feed(
			domain.StreamChunk{Kind: domain.ChunkAnswer, Text: "hi"},
		), domain.TurnSink{})

		require.NoError(t, err)
		require.Nil(t, usage)
	})

	t.Run("cancellation stops forwarding and drops usage", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		chunks := make(chan domain.StreamChunk)

		usage, err := stream.NewDemux().Run(cancelled, chunks, domain.TurnSink{})

		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, usage)
	})
}
