package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used by NewPasswordHasher when cost is 0
const DefaultBcryptCost = 12

// PasswordHasher hashes and checks passwords with bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher; cost 0 uses DefaultBcryptCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a bcrypt hash of the password
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Check returns nil if password matches hash
func (h *PasswordHasher) Check(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
