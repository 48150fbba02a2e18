package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/davidbz/cinder/internal/config"
	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/observability"
	"go.uber.org/zap"
)

const sinkBuffer = 16

// Handler handles HTTP requests.
type Handler struct {
	turns        *domain.TurnService
	defaultModel string
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(turns *domain.TurnService, policyCfg *config.PolicyConfig) *Handler {
	return &Handler{
		turns:        turns,
		defaultModel: policyCfg.DefaultModel,
	}
}

type turnResult struct {
	outcome *domain.TurnOutcome
	err     error
}

// HandleTurn processes one chat turn and streams the demultiplexed
// output as SSE events: thought, answer, safety, usage, error, done.
func (h *Handler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.ConversationID == "" {
		http.Error(w, "conversation_id is required", http.StatusBadRequest)
		return
	}

	if req.Model == "" {
		req.Model = h.defaultModel
	}

	ctx = observability.WithConversationID(ctx, req.ConversationID)
	ctx = observability.WithModel(ctx, req.Model)

	logger := observability.FromContext(ctx)
	logger.Info("turn request received",
		zap.Int("prompt_length", len(req.Prompt)),
	)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("streaming not supported")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	thoughts := make(chan string, sinkBuffer)
	answers := make(chan string, sinkBuffer)
	safety := make(chan string, sinkBuffer)

	results := make(chan turnResult, 1)

	go func() {
		outcome, err := h.turns.Run(ctx, &req, domain.TurnSink{
			Thoughts: thoughts,
			Answers:  answers,
			Safety:   safety,
		})
		close(thoughts)
		close(answers)
		close(safety)
		results <- turnResult{outcome: outcome, err: err}
	}()

	for thoughts != nil || answers != nil || safety != nil {
		select {
		case text, open := <-thoughts:
			if !open {
				thoughts = nil
				continue
			}
			writeEvent(w, flusher, "thought", text)
		case text, open := <-answers:
			if !open {
				answers = nil
				continue
			}
			writeEvent(w, flusher, "answer", text)
		case info, open := <-safety:
			if !open {
				safety = nil
				continue
			}
			writeEvent(w, flusher, "safety", info)
		}
	}

	result := <-results
	if result.err != nil {
		// Answer text already written stands; mark the turn as partial.
		logger.Error("turn failed", zap.Error(result.err))
		writeEvent(w, flusher, "error", result.err.Error())
		return
	}

	if result.outcome.Usage != nil {
		data, err := json.Marshal(result.outcome.Usage)
		if err == nil {
			writeEvent(w, flusher, "usage", string(data))
		}
	}

	logger.Info("turn completed",
		zap.Float64("temperature", result.outcome.Config.Temperature),
		zap.Int("thought_budget", result.outcome.Config.ThoughtBudget),
	)

	writeEvent(w, flusher, "done", "")
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}
