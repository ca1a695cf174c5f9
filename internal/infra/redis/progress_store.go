package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressStore keeps progress records as plain Redis strings.
// Each Save refreshes the TTL so abandoned sessions expire on their own.
type ProgressStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewProgressStore(client *redis.Client, ttl time.Duration) *ProgressStore {
	return &ProgressStore{
		client: client,
		ttl:    ttl,
		prefix: "quiz:progress:",
	}
}

func (s *ProgressStore) Load(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get progress: %w", err)
	}
	return value, true, nil
}

func (s *ProgressStore) Save(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) key(key string) string {
	return s.prefix + key
}
