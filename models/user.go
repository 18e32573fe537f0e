package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account allowed to read the statistics endpoints
type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          *string   `json:"email,omitempty" db:"email"`
	FullName       *string   `json:"full_name,omitempty" db:"full_name"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	Disabled       bool      `json:"disabled" db:"disabled"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UserProfile is the public form of a user; it is what gets cached
type UserProfile struct {
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Disabled bool    `json:"disabled"`
}

// Profile strips credentials from the user
func (u *User) Profile() UserProfile {
	return UserProfile{
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Disabled: u.Disabled,
	}
}
