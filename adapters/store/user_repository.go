package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"keystats/domain/core"
	"keystats/models"
	"keystats/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, full_name, hashed_password, disabled, created_at, updated_at`

// UserRepositoryImpl implements ports.UserRepository
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// GetByUsername retrieves a user by username
func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(`
		SELECT `+userColumns+`
		FROM users
		WHERE username = ?
	`), username)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}
	user.CreatedAt = naive(user.CreatedAt)
	user.UpdatedAt = naive(user.UpdatedAt)
	return &user, nil
}

// Create inserts a new user, assigning an ID and timestamps when unset
func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query, args, err := r.db.BindNamed(`
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :username, :email, :full_name, :hashed_password, :disabled, :created_at, :updated_at)
	`, user)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		switch {
		case isUniqueViolation(err, "username"):
			return core.ErrDuplicateUser
		case isUniqueViolation(err, "email"):
			return core.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// ListUsers returns all users ordered by username
func (r *UserRepositoryImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
