package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSnapshotPrefix = "feedview:snapshot:"

// RedisSnapshotStore keeps session snapshots in redis with a TTL so stale
// sessions expire on their own.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func (s *RedisSnapshotStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) SaveSnapshot(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, redisSnapshotPrefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}

func (s *RedisSnapshotStore) LoadSnapshot(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.Get(ctx, redisSnapshotPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return payload, true, nil
}

func (s *RedisSnapshotStore) DeleteSnapshot(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisSnapshotPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", key, err)
	}
	return nil
}

func (s *RedisSnapshotStore) Close() error {
	return s.client.Close()
}
