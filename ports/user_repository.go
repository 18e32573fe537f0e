package ports

import (
	"context"

	"keystats/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetByUsername returns core.ErrUserNotFound when no user matches
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create inserts a new user, returning core.ErrDuplicateUser or
	// core.ErrDuplicateEmail on unique violations
	Create(ctx context.Context, user *models.User) error

	// ListUsers returns all users ordered by username
	ListUsers(ctx context.Context) ([]*models.User, error)
}
