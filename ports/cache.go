package ports

import (
	"context"
	"time"
)

// Cache is a best-effort JSON cache. Failures are never surfaced: Get reports
// a miss and Set reports false.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
	ClearPrefix(ctx context.Context, prefix string) bool
	Enabled() bool
	Ping(ctx context.Context) error
}

// CacheBackend stores raw bytes for the cache layer. Keys arrive fully
// prefixed.
type CacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
	Ping(ctx context.Context) error
	Close() error
}
