package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 500

// RedisBackend stores entries in Redis with per-key expiry
type RedisBackend struct {
	client redis.UniversalClient
}

// RedisOptions configures NewRedisBackend
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisBackend creates a backend on a new client
func NewRedisBackend(opts RedisOptions) *RedisBackend {
	return NewRedisBackendFromClient(redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}))
}

// NewRedisBackendFromClient wraps an existing client
func NewRedisBackendFromClient(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, key).Err()
}

// DeleteByPrefix walks the keyspace with SCAN and deletes matches in batches
func (b *RedisBackend) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := b.client.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := b.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
