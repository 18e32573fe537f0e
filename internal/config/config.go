package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"keystats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Analyzer  AnalyzerConfig
	Logging   LoggingConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL    string
	Driver string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port               string
	GinMode            string
	CORSOrigins        []string
	RateLimitPerMinute int
}

// Cache backends
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

// CacheConfig holds cache layer settings
type CacheConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
	Timeout       time.Duration
	MemoryEntries int
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AnalyzerConfig holds key analyzer settings
type AnalyzerConfig struct {
	Timezone     string
	ResultTTL    time.Duration
	StoreTimeout time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
	File  string
}

// ProfilingConfig holds the admin listener settings (metrics and pprof)
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	// Load database configuration
	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = *loadServerConfig()
	config.Cache = *loadCacheConfig()
	config.Auth = *loadAuthConfig()
	config.Analyzer = *loadAnalyzerConfig()
	config.Logging = LoggingConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "info"),
		File:  getEnvOrDefault("LOG_FILE", ""),
	}
	config.Profiling = *loadProfilingConfig()

	// Validate required fields
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:    url,
		Driver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:               getEnvOrDefault("PORT", "8000"),
		GinMode:            getEnvOrDefault("GIN_MODE", "release"),
		CORSOrigins:        getEnvListOrDefault("CORS_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 100),
	}
}

func loadCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend:       strings.ToLower(getEnvOrDefault("CACHE_BACKEND", CacheBackendRedis)),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),
		Prefix:        getEnvOrDefault("CACHE_PREFIX", "key_analyzer:"),
		TTL:           getEnvDurationOrDefault("CACHE_TTL", time.Hour),
		Timeout:       getEnvDurationOrDefault("CACHE_TIMEOUT", 500*time.Millisecond),
		MemoryEntries: getEnvIntOrDefault("CACHE_MEMORY_ENTRIES", 1024),
	}
}

func loadAuthConfig() *AuthConfig {
	return &AuthConfig{
		JWTSecret:  os.Getenv("JWT_SECRET"),
		TokenTTL:   getEnvDurationOrDefault("JWT_TTL", 30*time.Minute),
		BcryptCost: getEnvIntOrDefault("BCRYPT_COST", 12),
	}
}

func loadAnalyzerConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		Timezone:     getEnvOrDefault("APP_TIMEZONE", "Asia/Shanghai"),
		ResultTTL:    getEnvDurationOrDefault("ANALYZER_RESULT_TTL", 300*time.Second),
		StoreTimeout: getEnvDurationOrDefault("STORE_TIMEOUT", 10*time.Second),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", true),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid("DATABASE_DRIVER must be postgres or sqlite")
	}
	switch config.Cache.Backend {
	case CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	default:
		return errors.ConfigInvalid("CACHE_BACKEND must be redis, memory or none")
	}
	if config.Auth.JWTSecret == "" {
		return errors.ConfigInvalid("JWT_SECRET is required")
	}
	if config.Server.RateLimitPerMinute <= 0 {
		return errors.ConfigInvalid("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("5m") or bare integers as seconds
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
