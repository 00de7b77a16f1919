package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the service layer.
type User struct {
	ID           UserID
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// All email comparisons (registration, login, invites) use this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail normalizes email and rejects anything that is not a bare address.
func ValidateEmail(email string) (string, error) {
	n := NormalizeEmail(email)
	if n == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	addr, err := mail.ParseAddress(n)
	if err != nil || addr.Address != n {
		return "", fmt.Errorf("%w: invalid email %q", ErrValidation, email)
	}
	return n, nil
}
