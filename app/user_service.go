package app

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"keystats/domain/core"
	"keystats/internal"
	"keystats/internal/auth"
	"keystats/internal/errors"
	"keystats/models"
	"keystats/ports"
)

// UserProfileTTL is how long a user profile stays cached
const UserProfileTTL = 300 * time.Second

// UserService registers users, checks credentials and resolves bearer tokens
type UserService struct {
	users  ports.UserRepository
	cache  ports.Cache
	hasher *auth.PasswordHasher
	tokens *auth.TokenIssuer
	logger *internal.Logger
}

// NewUserService creates the user service
func NewUserService(users ports.UserRepository, cache ports.Cache, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, logger *internal.Logger) *UserService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &UserService{users: users, cache: cache, hasher: hasher, tokens: tokens, logger: logger}
}

// Register creates a user with a hashed password
func (s *UserService) Register(ctx context.Context, username, email, fullName, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.ValidationError("username is required")
	}
	if len(password) < 6 {
		return nil, errors.ValidationError("password must be at least 6 characters")
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(errors.InternalError(err.Error()), "failed to hash password")
	}

	user := &models.User{Username: username, HashedPassword: hashed}
	if email = strings.TrimSpace(email); email != "" {
		user.Email = &email
	}
	if fullName = strings.TrimSpace(fullName); fullName != "" {
		user.FullName = &fullName
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case stderrors.Is(err, core.ErrDuplicateUser):
			return nil, errors.Conflict("username already registered")
		case stderrors.Is(err, core.ErrDuplicateEmail):
			return nil, errors.Conflict("email already registered")
		}
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	s.logger.Info("Registered user %s", username)
	return user, nil
}

// Authenticate checks the password and returns the user
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, errors.Unauthorized("incorrect username or password")
		}
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	if err := s.hasher.Check(user.HashedPassword, password); err != nil {
		return nil, errors.Unauthorized("incorrect username or password")
	}
	if user.Disabled {
		return nil, errors.Unauthorized("inactive user")
	}
	return user, nil
}

// IssueToken signs an access token for user
func (s *UserService) IssueToken(user *models.User) (string, error) {
	tok, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", errors.Wrap(errors.InternalError(err.Error()), "failed to issue token")
	}
	return tok, nil
}

// CurrentUser resolves a bearer token to the profile of an active user.
// Profiles are read through the cache.
func (s *UserService) CurrentUser(ctx context.Context, token string) (*models.UserProfile, error) {
	username, err := s.tokens.Validate(token)
	if err != nil {
		return nil, errors.Unauthorized("could not validate credentials")
	}

	key := UserCacheKey(username)
	profile := &models.UserProfile{}
	if !s.cache.Get(ctx, key, profile) {
		user, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			if core.IsNotFoundError(err) {
				return nil, errors.Unauthorized("could not validate credentials")
			}
			return nil, errors.WithCode(errors.CodeDatabaseError, err)
		}
		p := user.Profile()
		profile = &p
		s.cache.Set(ctx, key, profile, UserProfileTTL)
	}

	if profile.Disabled {
		return nil, errors.Unauthorized("inactive user")
	}
	return profile, nil
}
