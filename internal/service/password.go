// Package service contains the business logic layer, between the HTTP
// handlers and the repositories.
package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns plaintext passwords into one-way hashes and verifies
// candidates against stored hashes. Plaintext is never persisted.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(hash, candidate string) bool
}

type bcryptHasher struct {
	cost int
}

// NewPasswordHasher returns a bcrypt-backed PasswordHasher with the default cost.
func NewPasswordHasher() PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether candidate matches hash. Any error, including a
// malformed stored hash, reads as a mismatch.
func (h *bcryptHasher) Compare(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
