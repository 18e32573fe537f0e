package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryEntries bounds the in-process cache
const DefaultMemoryEntries = 1024

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBackend is an in-process LRU with per-entry expiry. The LRU itself
// evicts on its own maximum TTL; shorter per-entry TTLs are checked on read.
type MemoryBackend struct {
	lru    *expirable.LRU[string, memoryEntry]
	maxTTL time.Duration
	now    func() time.Time
}

// NewMemoryBackend creates a backend holding at most size entries, none
// living longer than maxTTL
func NewMemoryBackend(size int, maxTTL time.Duration) *MemoryBackend {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	return &MemoryBackend{
		lru:    expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		maxTTL: maxTTL,
		now:    time.Now,
	}
}

// MaxTTL is the longest any entry is kept, whatever ttl it was set with
func (b *MemoryBackend) MaxTTL() time.Duration {
	return b.maxTTL
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := b.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !b.now().Before(e.expiresAt) {
		b.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = b.now().Add(ttl)
	}
	b.lru.Add(key, e)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.lru.Remove(key)
	return nil
}

func (b *MemoryBackend) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for _, k := range b.lru.Keys() {
		if strings.HasPrefix(k, prefix) && b.lru.Remove(k) {
			n++
		}
	}
	return n, nil
}

func (b *MemoryBackend) Ping(context.Context) error {
	return nil
}

func (b *MemoryBackend) Close() error {
	b.lru.Purge()
	return nil
}
