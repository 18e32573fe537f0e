// Package cache implements the best-effort JSON cache used by the analyzer
// and the user service, over Redis or an in-process LRU.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"keystats/internal"
	"keystats/internal/metrics"
	"keystats/ports"
)

// Layer defaults
const (
	DefaultPrefix  = "key_analyzer:"
	DefaultTTL     = time.Hour
	DefaultTimeout = 500 * time.Millisecond
)

// Options configures a Layer
type Options struct {
	Prefix     string
	DefaultTTL time.Duration
	Timeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = DefaultTTL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Layer wraps a backend with key prefixing, JSON encoding and per-operation
// timeouts. It never returns errors to callers. A layer whose backend failed
// the startup ping stays disabled for its lifetime and never touches the
// backend again.
type Layer struct {
	backend ports.CacheBackend
	opts    Options
	logger  *internal.Logger
	enabled bool
}

var _ ports.Cache = (*Layer)(nil)

// NewLayer pings backend once and returns a layer that is enabled only if
// the ping succeeded. A nil backend yields a disabled layer.
func NewLayer(ctx context.Context, backend ports.CacheBackend, opts Options, logger *internal.Logger) *Layer {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	l := &Layer{backend: backend, opts: opts.withDefaults(), logger: logger}
	if backend == nil {
		logger.Info("Cache disabled: no backend configured")
		return l
	}

	pingCtx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()
	if err := backend.Ping(pingCtx); err != nil {
		logger.Warn("Cache disabled: backend unreachable at startup: %v", err)
		return l
	}
	l.enabled = true
	logger.Info("Cache enabled (prefix %q, default ttl %s)", l.opts.Prefix, l.opts.DefaultTTL)
	return l
}

// Disabled returns a layer that always misses
func Disabled() *Layer {
	return &Layer{opts: Options{}.withDefaults(), logger: internal.NewNopLogger()}
}

// Enabled reports whether the layer talks to its backend
func (l *Layer) Enabled() bool {
	return l.enabled
}

// Prefix returns the namespace prepended to every key
func (l *Layer) Prefix() string {
	return l.opts.Prefix
}

func (l *Layer) key(k string) string {
	return l.opts.Prefix + k
}

// Get decodes the cached value for key into dest and reports whether it was
// found. Misses, backend errors and undecodable payloads all return false.
func (l *Layer) Get(ctx context.Context, key string, dest any) bool {
	if !l.enabled {
		metrics.CacheOperationsTotal.WithLabelValues("get", "disabled").Inc()
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	raw, ok, err := l.backend.Get(ctx, l.key(key))
	if err != nil {
		l.logger.Warn("Cache get %s failed: %v", key, err)
		metrics.CacheOperationsTotal.WithLabelValues("get", "error").Inc()
		return false
	}
	if !ok {
		l.logger.Debug("Cache miss: %s", key)
		metrics.CacheOperationsTotal.WithLabelValues("get", "miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		l.logger.Warn("Cache entry %s is not decodable: %v", key, err)
		metrics.CacheOperationsTotal.WithLabelValues("get", "error").Inc()
		return false
	}
	l.logger.Debug("Cache hit: %s", key)
	metrics.CacheOperationsTotal.WithLabelValues("get", "hit").Inc()
	return true
}

// Set stores value as JSON under key. ttl <= 0 uses the default TTL.
func (l *Layer) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if !l.enabled {
		metrics.CacheOperationsTotal.WithLabelValues("set", "disabled").Inc()
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		l.logger.Warn("Cache set %s: value not encodable: %v", key, err)
		metrics.CacheOperationsTotal.WithLabelValues("set", "error").Inc()
		return false
	}
	if ttl <= 0 {
		ttl = l.opts.DefaultTTL
	}

	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()
	if err := l.backend.Set(ctx, l.key(key), raw, ttl); err != nil {
		l.logger.Warn("Cache set %s failed: %v", key, err)
		metrics.CacheOperationsTotal.WithLabelValues("set", "error").Inc()
		return false
	}
	metrics.CacheOperationsTotal.WithLabelValues("set", "stored").Inc()
	return true
}

// Delete removes key
func (l *Layer) Delete(ctx context.Context, key string) bool {
	if !l.enabled {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()
	if err := l.backend.Delete(ctx, l.key(key)); err != nil {
		l.logger.Warn("Cache delete %s failed: %v", key, err)
		metrics.CacheOperationsTotal.WithLabelValues("delete", "error").Inc()
		return false
	}
	metrics.CacheOperationsTotal.WithLabelValues("delete", "ok").Inc()
	return true
}

// ClearPrefix removes every key starting with prefix inside the layer's
// namespace; an empty prefix clears the whole namespace
func (l *Layer) ClearPrefix(ctx context.Context, prefix string) bool {
	if !l.enabled {
		return false
	}
	// SCAN walks the whole keyspace
	ctx, cancel := context.WithTimeout(ctx, 10*l.opts.Timeout)
	defer cancel()
	n, err := l.backend.DeleteByPrefix(ctx, l.key(prefix))
	if err != nil {
		l.logger.Warn("Cache clear %q failed: %v", prefix, err)
		metrics.CacheOperationsTotal.WithLabelValues("clear", "error").Inc()
		return false
	}
	l.logger.Info("Cache cleared %d keys with prefix %q", n, l.key(prefix))
	metrics.CacheOperationsTotal.WithLabelValues("clear", "ok").Inc()
	return true
}

// Ping checks the backend. It returns nil for a disabled layer.
func (l *Layer) Ping(ctx context.Context) error {
	if !l.enabled {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()
	return l.backend.Ping(ctx)
}

// Close releases the backend
func (l *Layer) Close() error {
	if l.backend == nil {
		return nil
	}
	return l.backend.Close()
}
