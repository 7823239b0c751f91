package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/vidgrab/vidgrab-bot/types"
)

// RedisConversationStore keeps the pending step of a user's two-step
// flow (awaiting a link, awaiting a transaction id) with a TTL, so a
// stalled conversation eventually evaporates on its own.
type RedisConversationStore struct {
	client *RedisClient
	ttl    time.Duration
}

func NewConversationStore(redisClient *RedisClient, ttlHours int) *RedisConversationStore {
	ttl := time.Duration(ttlHours) * time.Hour
	if ttlHours <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisConversationStore{
		client: redisClient,
		ttl:    ttl,
	}
}

func (s *RedisConversationStore) Get(userID string) (*types.Conversation, error) {
	key := s.client.generateKey("conversation", userID)

	var conv types.Conversation
	if err := s.client.Get(key, &conv); err != nil {
		return nil, nil
	}
	return &conv, nil
}

func (s *RedisConversationStore) Set(conv *types.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.StartedAt.IsZero() {
		conv.StartedAt = time.Now()
	}

	key := s.client.generateKey("conversation", conv.UserID)
	return s.client.Set(key, conv, s.ttl)
}

func (s *RedisConversationStore) Clear(userID string) error {
	key := s.client.generateKey("conversation", userID)
	return s.client.Del(key)
}
