package container

import (
	"context"
	"fmt"
	"time"

	"keystats/adapters/cache"
	"keystats/adapters/store"
	"keystats/app"
	"keystats/domain/core"
	"keystats/domain/window"
	"keystats/internal"
	"keystats/internal/api"
	"keystats/internal/auth"
	"keystats/internal/config"
	"keystats/internal/migration"
	"keystats/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB    *sqlx.DB
	Cache *cache.Layer

	// Repositories (data access layer)
	Records *store.KeyRecordRepository
	Users   ports.UserRepository

	// Services
	Resolver    *window.Resolver
	Analyzer    *app.KeyAnalyzerService
	UserService *app.UserService

	// Transport
	Server *api.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Container{Config: cfg, Logger: logger}, nil
}

// InitWithDatabase opens the database and builds everything that depends on it
func (c *Container) InitWithDatabase(ctx context.Context) error {
	db, err := store.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	return c.InitWith(ctx, db)
}

// InitWith builds the repositories, cache and services on an open database
func (c *Container) InitWith(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	c.Records = store.NewKeyRecordRepository(db)
	c.Users = store.NewUserRepository(db)
	c.Cache = c.newCache(ctx)

	loc, err := core.LoadLocation(c.Config.Analyzer.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", c.Config.Analyzer.Timezone, err)
	}
	if c.Resolver, err = window.NewResolver(loc); err != nil {
		return err
	}

	opts := app.DefaultAnalyzerOptions()
	opts.ResultTTL = c.Config.Analyzer.ResultTTL
	opts.StoreTimeout = c.Config.Analyzer.StoreTimeout
	c.Analyzer = app.NewKeyAnalyzerService(c.Records, c.Cache, c.Resolver, c.Logger, opts)

	tokens, err := auth.NewTokenIssuer(c.Config.Auth.JWTSecret, c.Config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	c.UserService = app.NewUserService(c.Users, c.Cache, auth.NewPasswordHasher(c.Config.Auth.BcryptCost), tokens, c.Logger)

	c.Server = api.NewServer(c.Analyzer, c.UserService, c.Records, c.Cache, c.Logger, api.Options{
		GinMode:            c.Config.Server.GinMode,
		CORSOrigins:        c.Config.Server.CORSOrigins,
		RateLimitPerMinute: c.Config.Server.RateLimitPerMinute,
	})

	c.Logger.Info("Container initialized (driver %s, cache %s, zone %s)",
		db.DriverName(), c.Config.Cache.Backend, loc)
	return nil
}

func (c *Container) newCache(ctx context.Context) *cache.Layer {
	opts := cache.Options{
		Prefix:     c.Config.Cache.Prefix,
		DefaultTTL: c.Config.Cache.TTL,
		Timeout:    c.Config.Cache.Timeout,
	}
	switch c.Config.Cache.Backend {
	case config.CacheBackendRedis:
		backend := cache.NewRedisBackend(cache.RedisOptions{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
		return cache.NewLayer(ctx, backend, opts, c.Logger)
	case config.CacheBackendMemory:
		return cache.NewLayer(ctx, cache.NewMemoryBackend(c.Config.Cache.MemoryEntries, c.memoryMaxTTL()), opts, c.Logger)
	default:
		return cache.NewLayer(ctx, nil, opts, c.Logger)
	}
}

// memoryMaxTTL is the longest TTL any caller asks the cache for, so the
// LRU's own expiry never cuts an entry short
func (c *Container) memoryMaxTTL() time.Duration {
	return max(c.Config.Cache.TTL, c.Config.Analyzer.ResultTTL, app.UserProfileTTL)
}

// Migrate brings the schema up to date
func (c *Container) Migrate(ctx context.Context) error {
	runner := migration.NewRunner()
	if err := runner.Run(ctx, c.DB); err != nil {
		return err
	}
	c.Logger.Info("Schema migrated to version %s", runner.Version())
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Server != nil {
		if err := c.Server.Shutdown(ctx); err != nil {
			c.Logger.Warn("API server shutdown: %v", err)
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.Logger.Warn("Cache close: %v", err)
		}
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
