// Package session implements conversation-scoped storage of the most
// recent turn's usage record, read by the cost-spike guard.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/davidbz/cinder/internal/domain"
)

// MemoryStore keeps last-usage records in process memory. Each
// conversation owns an independent entry; there is no expiry, the last
// value persists until overwritten.
type MemoryStore struct {
	mu     sync.RWMutex
	usages map[string]domain.UsageRecord
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usages: make(map[string]domain.UsageRecord),
	}
}

// Last returns the previous turn's usage for the conversation.
func (s *MemoryStore) Last(_ context.Context, conversationID string) (domain.UsageRecord, bool, error) {
	if conversationID == "" {
		return domain.UsageRecord{}, false, errors.New("conversation ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	usage, ok := s.usages[conversationID]
	return usage, ok, nil
}

// Record overwrites the conversation's last usage.
func (s *MemoryStore) Record(_ context.Context, conversationID string, usage domain.UsageRecord) error {
	if conversationID == "" {
		return errors.New("conversation ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.usages[conversationID] = usage
	return nil
}
