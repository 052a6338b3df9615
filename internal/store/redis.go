package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shopbot-backend/internal/assistant"
)

const redisKeyPrefix = "shopbot:conversation:"

// RedisStore keeps conversations in Redis so several server replicas share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (assistant.Conversation, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return assistant.Conversation{}, nil
	}
	if err != nil {
		return assistant.Conversation{}, fmt.Errorf("redis get: %w", err)
	}
	var conv assistant.Conversation
	if err := json.Unmarshal(val, &conv); err != nil {
		return assistant.Conversation{}, fmt.Errorf("decoding conversation: %w", err)
	}
	return conv, nil
}

// Put overwrites the conversation and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, sessionID string, conv assistant.Conversation) error {
	b, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sessionID, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
