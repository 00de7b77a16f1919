// Package auth issues and validates access tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tiagobluiz/travel-companion/internal/domain"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// UserID parses the subject claim.
func (c *Claims) UserID() (domain.UserID, error) {
	return domain.ParseUserID(c.Subject)
}

// TokenConfig holds access token settings.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenManager creates a TokenManager. A zero TTL defaults to 24h.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &TokenManager{cfg: cfg, now: time.Now}
}

// Issue returns a signed access token for user and its expiry.
func (m *TokenManager) Issue(user domain.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.cfg.TTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Email: user.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth.TokenManager.Issue: sign: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate verifies token and returns the user it was issued for.
func (m *TokenManager) Validate(token string) (domain.UserID, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.UserID{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return domain.UserID{}, ErrInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return domain.UserID{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
