package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned when a password exceeds MaxPasswordBytes
var ErrPasswordTooLong = errors.New("password cannot be longer than 72 bytes")

// hashCost is lowered in tests
var hashCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt digest of password
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether password matches digest. Oversized
// passwords and malformed digests are a mismatch, never an error.
func VerifyPassword(password, digest string) bool {
	if len(password) > MaxPasswordBytes || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
