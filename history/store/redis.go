package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweetpotato0/colloquy/config"
	colloquyerrors "github.com/sweetpotato0/colloquy/errors"
	"github.com/sweetpotato0/colloquy/history"
)

// RedisStore implements history storage using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis configuration for history records.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// DefaultRedisConfig returns default Redis configuration.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "colloquy:history:",
		TTL:    24 * time.Hour,
	}
}

// Validate checks the configuration for connectable values.
func (c *RedisConfig) Validate() error {
	return config.ValidateRedisConfig(c.Addr, c.DB, c.Prefix)
}

// NewRedisStore creates a new Redis-based history store.
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		cfg = DefaultRedisConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}, nil
}

// Save persists a history record to Redis.
func (s *RedisStore) Save(ctx context.Context, record *history.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("history record must have an ID: %w", colloquyerrors.ErrInvalidInput)
	}

	cloned := record.Clone()
	if cloned.CreatedAt.IsZero() {
		cloned.CreatedAt = time.Now()
	}
	cloned.UpdatedAt = time.Now()

	raw, err := json.Marshal(cloned)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}

	if err := s.client.Set(ctx, s.recordKey(record.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	if err := s.client.SAdd(ctx, s.setKey(), record.ID).Err(); err != nil {
		return fmt.Errorf("failed to add history to index: %w", err)
	}
	return nil
}

// Load loads a history record from Redis.
func (s *RedisStore) Load(ctx context.Context, id string) (*history.Record, error) {
	raw, err := s.client.Get(ctx, s.recordKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("history %s: %w", id, colloquyerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var record history.Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("failed to decode history record: %w", err)
	}
	return &record, nil
}

// Delete removes a history record from Redis.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.recordKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	if err := s.client.SRem(ctx, s.setKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to update history index: %w", err)
	}
	return nil
}

// List returns all stored history IDs.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.setKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}
	return ids, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) recordKey(id string) string {
	return s.prefix + id
}

func (s *RedisStore) setKey() string {
	return s.prefix + "set"
}
