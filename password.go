package authkit

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the bcrypt work factor used when none is configured.
// High enough to resist offline brute force on commodity hardware.
const DefaultBcryptCost = 12

// PasswordHasher performs one-way hashing and verification of passwords.
// The zero value uses DefaultBcryptCost.
type PasswordHasher struct {
	Cost int
}

func (h *PasswordHasher) cost() int {
	if h == nil || h.Cost <= 0 {
		return DefaultBcryptCost
	}
	return h.Cost
}

// Hash returns the bcrypt hash of password at the configured work factor.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost())
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify compares a stored hash against a candidate password. The timing
// characteristics are bcrypt's own; no hand-rolled comparison.
func (h *PasswordHasher) Verify(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
