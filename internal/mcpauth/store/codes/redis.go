package codes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
)

const redisKeyPrefix = "acacia:authcode:"

// RedisStore keeps pending authorizations in Redis with a server-side TTL.
// TakeOnce uses GETDEL, so redemption is an atomic take even across nodes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL dials Redis from a URL like redis://host:6379/0.
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("codes: invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("codes: redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Put(ctx context.Context, code string, record domain.PendingAuthorization, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("codes: marshal pending authorization: %w", err)
	}
	return s.client.Set(ctx, redisKeyPrefix+code, payload, ttl).Err()
}

func (s *RedisStore) TakeOnce(ctx context.Context, code string) (domain.PendingAuthorization, bool, error) {
	val, err := s.client.GetDel(ctx, redisKeyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return domain.PendingAuthorization{}, false, nil
	}
	if err != nil {
		return domain.PendingAuthorization{}, false, err
	}

	var record domain.PendingAuthorization
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return domain.PendingAuthorization{}, false, fmt.Errorf("codes: unmarshal pending authorization: %w", err)
	}
	return record, true, nil
}

func (s *RedisStore) Discard(ctx context.Context, code string) error {
	return s.client.Del(ctx, redisKeyPrefix+code).Err()
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }
