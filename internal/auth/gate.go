// Package auth implements the optional access protection for the API: a
// single shared password verified with bcrypt, exchanged for a short-lived
// JWT session token. There are no user accounts; the helpers are a
// single-user app.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
)

// Gate verifies the shared access password.
type Gate struct {
	hash []byte
}

// NewGate creates a Gate for the given plaintext password.
func NewGate(password string) (*Gate, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Gate{hash: hash}, nil
}

// Verify checks a password attempt.
func (g *Gate) Verify(password string) error {
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
