// Package auth implements credential handling for the marketplace API:
// bcrypt password hashing and HS256 JWT access tokens. Tokens carry the
// user id (sub), the profile role, and a staff flag; the HTTP middleware
// verifies them and exposes the claims to handlers.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails signature verification,
// is expired, or does not carry the expected claims.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded identity carried by an access token.
type Claims struct {
	UserID  string
	Role    string
	IsStaff bool
}

// IssueToken builds and signs an HS256 access token for the given identity.
// The token embeds sub, role, staff, iat, and exp; ttl controls the lifetime.
func IssueToken(secret, userID, role string, isStaff bool, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   userID,
		"role":  role,
		"staff": isStaff,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseToken verifies an access token signature and expiry and extracts the
// identity claims. Tokens signed with any method other than HMAC are
// rejected. Returns ErrInvalidToken for any verification failure.
func ParseToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	role, _ := mc["role"].(string)
	staff, _ := mc["staff"].(bool)
	if sub == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: sub, Role: role, IsStaff: staff}, nil
}
