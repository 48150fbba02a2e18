// Package redis provides a Redis-backed session store so multiple
// service instances share last-usage state for the same conversation.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/observability"
)

const keyPrefix = "cinder:session:"

// Store implements the domain.SessionStore interface on Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a Redis session store. A zero TTL keeps records
// until overwritten.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// Last returns the previous turn's usage for the conversation.
func (s *Store) Last(ctx context.Context, conversationID string) (domain.UsageRecord, bool, error) {
	if conversationID == "" {
		return domain.UsageRecord{}, false, errors.New("conversation ID cannot be empty")
	}

	data, err := s.client.Get(ctx, keyPrefix+conversationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.UsageRecord{}, false, nil
	}
	if err != nil {
		return domain.UsageRecord{}, false, fmt.Errorf("failed to get session usage: %w", err)
	}

	var usage domain.UsageRecord
	if err := json.Unmarshal(data, &usage); err != nil {
		return domain.UsageRecord{}, false, fmt.Errorf("failed to unmarshal session usage: %w", err)
	}

	return usage, true, nil
}

// Record overwrites the conversation's last usage.
func (s *Store) Record(ctx context.Context, conversationID string, usage domain.UsageRecord) error {
	if conversationID == "" {
		return errors.New("conversation ID cannot be empty")
	}

	data, err := json.Marshal(usage)
	if err != nil {
		return fmt.Errorf("failed to marshal session usage: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+conversationID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session usage: %w", err)
	}

	observability.FromContext(ctx).Debug("session usage stored",
		observability.Int("total_tokens", usage.TotalTokens),
		observability.Int("thought_tokens", usage.ThoughtTokens),
	)

	return nil
}
