package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func newRedisLayer(t *testing.T) (*Layer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	backend := NewRedisBackend(RedisOptions{Addr: mr.Addr()})
	t.Cleanup(func() { backend.Close() })
	return NewLayer(context.Background(), backend, Options{}, nil), mr
}

func TestLayer_RedisRoundTrip(t *testing.T) {
	l, mr := newRedisLayer(t)
	ctx := context.Background()
	require.True(t, l.Enabled())

	var got payload
	assert.False(t, l.Get(ctx, "statistics:1:2", &got))

	require.True(t, l.Set(ctx, "statistics:1:2", payload{"a", 1.5}, 300*time.Second))
	assert.True(t, mr.Exists("key_analyzer:statistics:1:2"))
	assert.Equal(t, 300*time.Second, mr.TTL("key_analyzer:statistics:1:2"))

	require.True(t, l.Get(ctx, "statistics:1:2", &got))
	assert.Equal(t, payload{"a", 1.5}, got)

	mr.FastForward(301 * time.Second)
	assert.False(t, l.Get(ctx, "statistics:1:2", &got))
}

func TestLayer_DefaultTTL(t *testing.T) {
	l, mr := newRedisLayer(t)
	require.True(t, l.Set(context.Background(), "k", 1, 0))
	assert.Equal(t, DefaultTTL, mr.TTL("key_analyzer:k"))
}

func TestLayer_UndecodableEntryIsMiss(t *testing.T) {
	l, mr := newRedisLayer(t)
	require.NoError(t, mr.Set("key_analyzer:broken", "{not json"))

	var got payload
	assert.False(t, l.Get(context.Background(), "broken", &got))
}

func TestLayer_DeleteAndClearPrefix(t *testing.T) {
	l, mr := newRedisLayer(t)
	ctx := context.Background()

	for _, k := range []string{"recent_keys:1:2", "recent_keys:3:4", "statistics:1:2"} {
		require.True(t, l.Set(ctx, k, k, time.Minute))
	}
	require.NoError(t, mr.Set("other:recent_keys:1:2", "x"))

	assert.True(t, l.Delete(ctx, "statistics:1:2"))
	assert.False(t, mr.Exists("key_analyzer:statistics:1:2"))

	assert.True(t, l.ClearPrefix(ctx, "recent_keys:"))
	assert.False(t, mr.Exists("key_analyzer:recent_keys:1:2"))
	assert.False(t, mr.Exists("key_analyzer:recent_keys:3:4"))
	assert.True(t, mr.Exists("other:recent_keys:1:2"), "keys outside the namespace survive")
}

func TestLayer_DisabledAfterFailedPing(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	backend := NewRedisBackend(RedisOptions{Addr: addr})
	defer backend.Close()
	l := NewLayer(context.Background(), backend, Options{Timeout: 200 * time.Millisecond}, nil)

	assert.False(t, l.Enabled())
	assert.False(t, l.Set(context.Background(), "k", 1, time.Minute))
	var v int
	assert.False(t, l.Get(context.Background(), "k", &v))
	assert.NoError(t, l.Ping(context.Background()))
}

// countingBackend fails its ping and records any further calls
type countingBackend struct {
	MemoryBackend
	calls int
}

func (b *countingBackend) Ping(context.Context) error { return errors.New("down") }
func (b *countingBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.calls++
	return b.MemoryBackend.Get(ctx, key)
}
func (b *countingBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.calls++
	return b.MemoryBackend.Set(ctx, key, value, ttl)
}

func TestLayer_DisabledNeverCallsBackend(t *testing.T) {
	b := &countingBackend{MemoryBackend: *NewMemoryBackend(8, time.Hour)}
	l := NewLayer(context.Background(), b, Options{}, nil)

	var v int
	l.Set(context.Background(), "k", 1, time.Minute)
	l.Get(context.Background(), "k", &v)
	l.Delete(context.Background(), "k")
	l.ClearPrefix(context.Background(), "")
	assert.Equal(t, 0, b.calls)
}

func TestLayer_Nil(t *testing.T) {
	l := NewLayer(context.Background(), nil, Options{}, nil)
	assert.False(t, l.Enabled())
	assert.False(t, Disabled().Enabled())
	assert.NoError(t, l.Close())
}

func TestLayer_RuntimeFailureIsMiss(t *testing.T) {
	l, mr := newRedisLayer(t)
	ctx := context.Background()
	require.True(t, l.Set(ctx, "k", 1, time.Minute))

	mr.SetError("ERR injected failure")
	var v int
	assert.False(t, l.Get(ctx, "k", &v))
	assert.False(t, l.Set(ctx, "k", 2, time.Minute))
	assert.True(t, l.Enabled())

	mr.SetError("")
	assert.True(t, l.Get(ctx, "k", &v))
	assert.Equal(t, 1, v)
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend(2, time.Hour)
	assert.Equal(t, time.Hour, b.MaxTTL())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "p:a", []byte("1"), time.Minute))
	v, ok, err := b.Get(ctx, "p:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	now = now.Add(time.Minute)
	_, ok, _ = b.Get(ctx, "p:a")
	assert.False(t, ok, "entry expires at its own ttl")

	require.NoError(t, b.Set(ctx, "p:b", []byte("2"), 0))
	require.NoError(t, b.Set(ctx, "q:c", []byte("3"), 0))
	require.NoError(t, b.Set(ctx, "p:d", []byte("4"), 0))
	_, ok, _ = b.Get(ctx, "p:b")
	assert.False(t, ok, "least recently used entry is evicted")

	n, err := b.DeleteByPrefix(ctx, "p:")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok, _ = b.Get(ctx, "q:c")
	assert.True(t, ok)
}

func TestLayer_MemoryBackend(t *testing.T) {
	l := NewLayer(context.Background(), NewMemoryBackend(16, time.Hour), Options{Prefix: "t:"}, nil)
	ctx := context.Background()
	require.True(t, l.Enabled())
	assert.Equal(t, "t:", l.Prefix())

	require.True(t, l.Set(ctx, "x", []int{1, 2}, time.Minute))
	var got []int
	require.True(t, l.Get(ctx, "x", &got))
	assert.Equal(t, []int{1, 2}, got)
}
