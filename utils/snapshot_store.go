package utils

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore persists whole-snapshot blobs under fixed string keys.
// Writes overwrite the previous blob entirely, so concurrent savers are
// last-writer-wins.
type RedisSnapshotStore struct {
	Redis *redis.Client
}

func NewRedisSnapshotStore(redisClient *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{Redis: redisClient}
}

// Load returns the stored blob, or (nil, nil) when the slot has never been
// written.
func (s *RedisSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.Redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return data, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.Redis.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}
