package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// casScript swaps the value only while the stored bytes still match.
// Returns 1 on success, 0 on conflict.
var casScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("SET", KEYS[1], ARGV[2])
  return 1
end
return 0
`)

// RedisStore implements Store using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(opts ...RedisOption) (*RedisStore, error) {
	cfg := &RedisConfig{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 5,
		Prefix:       "macropulse",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

// Client returns the underlying redis client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyMiss
		}
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.wrapKey(key), value, 0).Err()
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, key string, old, value []byte) error {
	key = s.wrapKey(key)

	if old == nil {
		ok, err := s.client.SetNX(ctx, key, value, 0).Result()
		if err != nil {
			return err
		}
		if !ok {
			return ErrCASConflict
		}
		return nil
	}

	n, err := casScript.Run(ctx, s.client, []string{key}, old, value).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCASConflict
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Unlink(ctx, s.wrapKeys(keys...)...).Err()
}

func (s *RedisStore) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.wrapKey(key), "locked", ttl).Result()
}

func (s *RedisStore) Unlock(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.wrapKey(key)).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) wrapKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *RedisStore) wrapKeys(keys ...string) []string {
	wrapped := make([]string, len(keys))
	for i, key := range keys {
		wrapped[i] = s.wrapKey(key)
	}
	return wrapped
}
