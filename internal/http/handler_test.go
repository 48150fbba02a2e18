package http_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/cinder/internal/config"
	"github.com/davidbz/cinder/internal/domain"
	cinderhttp "github.com/davidbz/cinder/internal/http"
	"github.com/davidbz/cinder/internal/lexicon"
	"github.com/davidbz/cinder/internal/policy"
	"github.com/davidbz/cinder/internal/provider/registry"
	"github.com/davidbz/cinder/internal/provider/script"
	"github.com/davidbz/cinder/internal/session"
	"github.com/davidbz/cinder/internal/stream"
)

func newHandler(t *testing.T, client domain.ModelClient) *cinderhttp.Handler {
	t.Helper()

	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(context.Background(), client))

	turns := domain.NewTurnService(
		reg,
		policy.NewPlanner(lexicon.Default(), 2048),
		session.NewMemoryStore(),
		stream.NewDemux(),
		nil,
	)

	return cinderhttp.NewHandler(turns, &config.PolicyConfig{DefaultModel: "script-1"})
}

func TestHandler_HandleTurn(t *testing.T) {
	t.Run("streams answer events and a done event", func(t *testing.T) {
		handler := newHandler(t, script.NewScriptedClient([]domain.StreamChunk{
			{Kind: domain.ChunkAnswer, Text: "hello"},
			{Kind: domain.ChunkMetadata, Usage: &domain.UsageRecord{TotalTokens: 7}},
		}))

		body := `{"conversation_id":"conv-1","model":"script-1","prompt":"hi"}`
		req := httptest.NewRequest("POST", "/v1/turns", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleTurn(rec, req)

		require.Equal(t, 200, rec.Code)
		require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

		out := rec.Body.String()
		require.Contains(t, out, "event: answer\ndata: hello")
		require.Contains(t, out, "event: usage")
		require.Contains(t, out, `"total_tokens":7`)
		require.Contains(t, out, "event: done")
	})

	t.Run("forwards safety events", func(t *testing.T) {
		handler := newHandler(t, script.NewScriptedClient([]domain.StreamChunk{
			{Kind: domain.ChunkSafety, Safety: "content_filter"},
		}))

		body := `{"conversation_id":"conv-1","model":"script-1","prompt":"hi"}`
		req := httptest.NewRequest("POST", "/v1/turns", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleTurn(rec, req)

		require.Contains(t, rec.Body.String(), "event: safety\ndata: content_filter")
	})

	t.Run("transport failure emits an error event after partial output", func(t *testing.T) {
		handler := newHandler(t, script.NewScriptedClient([]domain.StreamChunk{
			{Kind: domain.ChunkAnswer, Text: "partial"},
			{Err: context.DeadlineExceeded},
		}))

		body := `{"conversation_id":"conv-1","model":"script-1","prompt":"hi"}`
		req := httptest.NewRequest("POST", "/v1/turns", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleTurn(rec, req)

		out := rec.Body.String()
		require.Contains(t, out, "event: answer\ndata: partial")
		require.Contains(t, out, "event: error")
		require.NotContains(t, out, "event: done")
	})

	t.Run("missing conversation ID is a bad request", func(t *testing.T) {
		handler := newHandler(t, script.NewClient())

		req := httptest.NewRequest("POST", "/v1/turns", strings.NewReader(`{"prompt":"hi"}`))
		rec := httptest.NewRecorder()

		handler.HandleTurn(rec, req)

		require.Equal(t, 400, rec.Code)
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		handler := newHandler(t, script.NewClient())

		req := httptest.NewRequest("GET", "/v1/turns", nil)
		rec := httptest.NewRecorder()

		handler.HandleTurn(rec, req)

		require.Equal(t, 405, rec.Code)
	})

	t.Run("empty model falls back to the default", func(t *testing.T) {
		handler := newHandler(t, script.NewClient())

		body := `{"conversation_id":"conv-1","prompt":"hello there"}`
		req := httptest.NewRequest("POST", "/v1/turns", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleTurn(rec, req)

		require.Equal(t, 200, rec.Code)
		require.Contains(t, rec.Body.String(), "event: done")
	})
}

func TestHandler_HandleHealth(t *testing.T) {
	handler := newHandler(t, script.NewClient())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()

	handler.HandleHealth(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "healthy")
}
