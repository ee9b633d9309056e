// Package auth provides password verification and session management for
// the designer's web UI.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost factor. Cost 12 takes roughly a quarter
// second on current hardware, which is fine for a login form.
const DefaultCost = 12

var (
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrPasswordMismatch is returned when verification fails. It does
	// not reveal whether the stored hash was valid.
	ErrPasswordMismatch = errors.New("password does not match")
)

// HashPassword creates a bcrypt hash safe for storage.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a stored hash.
func VerifyPassword(hash, password string) error {
	if password == "" {
		return ErrPasswordMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
