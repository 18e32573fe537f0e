package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"keystats/internal/errors"
	"keystats/models"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleToken exchanges form credentials for a bearer token
func (s *Server) handleToken(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		writeError(c, errors.ValidationError("username and password are required"))
		return
	}

	user, err := s.users.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := s.users.IssueToken(user)
	if err != nil {
		writeError(c, err)
		return
	}
	s.logger.Debug("Issued token for %s", user.Username)
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.ValidationError("username and password are required"))
		return
	}
	if _, err := s.users.Register(c.Request.Context(), req.Username, req.Email, req.FullName, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
}

func (s *Server) handleMe(c *gin.Context) {
	profile, _ := c.Get(profileKey)
	c.JSON(http.StatusOK, profile.(*models.UserProfile))
}

func (s *Server) handleRecentKeys(c *gin.Context) {
	start, end, ok := rangeParams(c)
	if !ok {
		return
	}
	views, err := s.analyzer.GetRecentKeys(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleHighScoreKeys(c *gin.Context) {
	start, end, ok := rangeParams(c)
	if !ok {
		return
	}
	views, err := s.analyzer.GetHighScoreKeys(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleStatistics(c *gin.Context) {
	start, end, ok := rangeParams(c)
	if !ok {
		return
	}
	result, err := s.analyzer.GetStatistics(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// rangeParams parses the optional start/end epoch-millisecond query
// parameters. It writes a 400 and returns false on malformed input.
func rangeParams(c *gin.Context) (*int64, *int64, bool) {
	parse := func(name string) (*int64, bool) {
		raw := c.Query(name)
		if raw == "" {
			return nil, true
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, errors.InvalidInput(name+" must be an integer millisecond timestamp"))
			return nil, false
		}
		return &v, true
	}
	start, ok := parse("start")
	if !ok {
		return nil, nil, false
	}
	end, ok := parse("end")
	if !ok {
		return nil, nil, false
	}
	return start, end, true
}

type healthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Redis    string            `json:"redis"`
	Details  map[string]string `json:"details"`
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	health := healthResponse{Status: "healthy", Database: "up", Redis: "up", Details: map[string]string{}}

	if err := s.db.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Database = "down"
		health.Details["database_error"] = err.Error()
	}

	switch {
	case s.cache == nil || !s.cache.Enabled():
		health.Redis = "disabled"
	default:
		if err := s.cache.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Redis = "down"
			health.Details["redis_error"] = err.Error()
		}
	}

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
