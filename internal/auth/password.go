package auth

import (
	"errors"
	"unicode"

	"github.com/hikarock/kanban-board-api/internal/constants"
	"golang.org/x/crypto/bcrypt"
)

var ErrWeakPassword = errors.New("password must be 8-128 characters and contain at least one letter and one digit")

// ValidatePassword enforces the password policy at the boundary, before
// hashing. Violations are reported, never silently truncated.
func ValidatePassword(password string) error {
	if len(password) < constants.MinPasswordLength || len(password) > constants.MaxPasswordLength {
		return ErrWeakPassword
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword produces a salted bcrypt digest. The same plaintext yields a
// different digest on every call.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
