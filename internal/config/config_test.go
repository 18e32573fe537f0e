package config

import (
	"testing"
	"time"

	"keystats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "key_analyzer:", cfg.Cache.Prefix)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Cache.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "Asia/Shanghai", cfg.Analyzer.Timezone)
	assert.Equal(t, 300*time.Second, cfg.Analyzer.ResultTTL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CACHE_BACKEND", "Memory")
	t.Setenv("CACHE_TTL", "120")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 120*time.Second, cfg.Cache.TTL)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5, cfg.Server.RateLimitPerMinute)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"missing database url", "DATABASE_URL", ""},
		{"unknown driver", "DATABASE_DRIVER", "mysql"},
		{"unknown cache backend", "CACHE_BACKEND", "memcached"},
		{"missing jwt secret", "JWT_SECRET", ""},
		{"zero rate limit", "RATE_LIMIT_PER_MINUTE", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
