// Package api serves the public JSON API with gin and the admin listener
// (metrics, pprof) with chi.
package api

import (
	"context"
	"net/http"
	"time"

	"keystats/internal"
	"keystats/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// Analyzer answers the dashboard queries
type Analyzer interface {
	GetRecentKeys(ctx context.Context, start, end *int64) ([]models.RecordView, error)
	GetHighScoreKeys(ctx context.Context, start, end *int64) ([]models.RecordView, error)
	GetStatistics(ctx context.Context, start, end *int64) (*models.StatisticsResult, error)
}

// Users handles registration, login and token resolution
type Users interface {
	Register(ctx context.Context, username, email, fullName, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	IssueToken(user *models.User) (string, error)
	CurrentUser(ctx context.Context, token string) (*models.UserProfile, error)
}

// Pinger is a dependency checked by /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheStatus is the cache as seen by /health
type CacheStatus interface {
	Pinger
	Enabled() bool
}

// Options configures the public server
type Options struct {
	GinMode            string
	CORSOrigins        []string
	RateLimitPerMinute int
}

// Server is the public HTTP API
type Server struct {
	router   *gin.Engine
	handler  http.Handler
	analyzer Analyzer
	users    Users
	db       Pinger
	cache    CacheStatus
	logger   *internal.Logger
	limiter  *RateLimiter
	http     *http.Server
}

// NewServer wires routes and middleware
func NewServer(analyzer Analyzer, users Users, db Pinger, cache CacheStatus, logger *internal.Logger, opts Options) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 100
	}

	s := &Server{
		router:   gin.New(),
		analyzer: analyzer,
		users:    users,
		db:       db,
		cache:    cache,
		logger:   logger,
		limiter:  NewRateLimiter(opts.RateLimitPerMinute),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(s.router)
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(RequestLogger(s.logger))
	s.router.Use(s.limiter.Middleware())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/auth/token", s.handleToken)
	api.POST("/auth/register", s.handleRegister)

	authed := api.Group("")
	authed.Use(RequireAuth(s.users))
	authed.GET("/users/me", s.handleMe)
	authed.GET("/keys/recent", s.handleRecentKeys)
	authed.GET("/keys/high-score", s.handleHighScoreKeys)
	authed.GET("/statistics", s.handleStatistics)
}

// Handler returns the CORS-wrapped router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting API server on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
