// Package store holds the conversation stores behind assistant.Service.
package store

import (
	"time"

	"github.com/redis/go-redis/v9"

	"shopbot-backend/internal/assistant"
)

// Store is a conversation store that owns resources.
type Store interface {
	assistant.ConversationStore
	Close() error
}

type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeFile   StoreType = "file"
)

type storeConfig struct {
	redisClient *redis.Client
	ttl         time.Duration
	path        string
}

type Option func(*storeConfig)

func WithRedisClient(c *redis.Client) Option {
	return func(cfg *storeConfig) { cfg.redisClient = c }
}

func WithTTL(ttl time.Duration) Option {
	return func(cfg *storeConfig) { cfg.ttl = ttl }
}

func WithPath(path string) Option {
	return func(cfg *storeConfig) { cfg.path = path }
}

// NewStore builds a store of the given type. Redis needs WithRedisClient and
// file needs WithPath. TTL defaults to 30 minutes.
func NewStore(typ StoreType, opts ...Option) (Store, error) {
	cfg := &storeConfig{ttl: 30 * time.Minute}
	for _, opt := range opts {
		opt(cfg)
	}

	switch typ {
	case StoreTypeMemory, "":
		return NewMemoryStore(cfg.ttl), nil
	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return NewRedisStore(cfg.redisClient, cfg.ttl), nil
	case StoreTypeFile:
		if cfg.path == "" {
			return nil, ErrInvalidConfig
		}
		return NewFileStore(cfg.path), nil
	default:
		return nil, ErrInvalidStoreType
	}
}
