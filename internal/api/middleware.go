package api

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"keystats/internal"
	"keystats/internal/errors"
	"keystats/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	profileKey   = "user_profile"
	requestIDKey = "request_id"
)

// RequestLogger logs each request and records the HTTP metrics
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Header("X-Request-ID", reqID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		logger.Info("%s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path, status, elapsed, reqID)
	}
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	perMin   int
	limiters map[string]*clientLimiter
	now      func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// idleLimiterTTL is how long an unused client bucket is kept
const idleLimiterTTL = 10 * time.Minute

// NewRateLimiter allows perMinute requests per minute per client, with
// bursts up to perMinute
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		perMin:   perMinute,
		limiters: make(map[string]*clientLimiter),
		now:      time.Now,
	}
}

// Allow reports whether ip may make another request now
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cl, ok := l.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.perMin)}
		l.limiters[ip] = cl
		l.evictIdle(now)
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (l *RateLimiter) evictIdle(now time.Time) {
	for ip, cl := range l.limiters {
		if now.Sub(cl.lastSeen) > idleLimiterTTL && !cl.lastSeen.IsZero() {
			delete(l.limiters, ip)
		}
	}
}

// Middleware rejects over-limit clients with 429. /health is exempt.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		if !l.Allow(clientIP(c)) {
			metrics.RateLimitedTotal.Inc()
			c.Header("Retry-After", "60")
			c.Header("X-RateLimit-Limit", strconv.Itoa(l.perMin))
			c.AbortWithStatusJSON(429, gin.H{"detail": "Too many requests"})
			return
		}
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}

// RequireAuth resolves the bearer token to an active user profile
func RequireAuth(users Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(c, errors.Unauthorized("not authenticated"))
			return
		}
		profile, err := users.CurrentUser(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(profileKey, profile)
		c.Next()
	}
}
