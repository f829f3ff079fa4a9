package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// KeyPrefix namespaces view snapshots in Redis.
const KeyPrefix = "finsummary:session:"

// RedisStore keeps snapshots in Redis as JSON. Keys expire ttl after the last
// save, so Sweep has nothing to do.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses a redis:// URL and returns a connected client.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewRedisStore creates a RedisStore. A non-positive ttl uses DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*core.State, error) {
	payload, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var st core.State
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("redis decode %s: %w", id, err)
	}
	return &st, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, st core.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", id, err)
	}
	if err := s.client.Set(ctx, redisKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Sweep is a no-op: Redis expires keys itself.
func (s *RedisStore) Sweep(context.Context) (int, error) {
	return 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func redisKey(id string) string {
	return KeyPrefix + id
}
