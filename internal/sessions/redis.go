package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tenantgate/tenantgate/internal/config"
)

const scanBatchSize = 500

// RedisStore keeps vaults in Redis under session:<id>
type RedisStore struct {
	db redis.UniversalClient
}

// NewRedisClient creates a client from the application config
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStore wraps an existing client
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{db: client}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) ([]byte, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}
	val, err := s.db.Get(ctx, Key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID string, vault []byte, ttl time.Duration) error {
	if sessionID == "" {
		return ErrEmptySession
	}
	if err := s.db.Set(ctx, Key(sessionID), vault, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionIDs ...string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	keys := make([]string, len(sessionIDs))
	for i, id := range sessionIDs {
		keys[i] = Key(id)
	}
	if err := s.db.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// Scan walks session keys with SCAN so Redis is never blocked by KEYS
func (s *RedisStore) Scan(ctx context.Context, fn func(sessionID string, vault []byte) error) error {
	iter := s.db.Scan(ctx, 0, KeyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, ok := IDFromKey(key)
		if !ok {
			continue
		}

		val, err := s.db.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// expired between SCAN and GET
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}

		if err := fn(id, val); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan sessions: %w", err)
	}
	return nil
}

// Ping checks connectivity for health checks
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx).Err()
}
