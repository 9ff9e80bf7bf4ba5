// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. RequireAuth parses and
// verifies the Authorization header, then stashes the caller's identity
// (user ID, profile role, staff flag) in the Gin context for downstream
// handlers and middleware (logging, rate limiting by user).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-marketplace-backend/internal/auth"
)

// Context keys for the authenticated identity. KeyByUserOrIP and Logger read
// the user ID under the same key.
const (
	ctxKeyUserID   = "userID"
	ctxKeyUserRole = "userRole"
	ctxKeyIsStaff  = "isStaff"
)

// RequireAuth returns a middleware that rejects requests lacking a valid
// "Authorization: Bearer <token>" header with a 401 JSON body. On success the
// verified claims are stored in the Gin context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			unauthorized(c, "missing bearer token")
			return
		}
		claims, err := auth.ParseToken(secret, raw)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyUserRole, claims.Role)
		c.Set(ctxKeyIsStaff, claims.IsStaff)
		c.Next()
	}
}

// UserIDFrom returns the authenticated user ID, or "" when the request is
// anonymous.
func UserIDFrom(c *gin.Context) string {
	v, _ := c.Get(ctxKeyUserID)
	return asString(v)
}

// RoleFrom returns the authenticated user's profile role ("customer" or
// "business"), or "" when the request is anonymous.
func RoleFrom(c *gin.Context) string {
	v, _ := c.Get(ctxKeyUserRole)
	return asString(v)
}

// IsStaffFrom reports whether the authenticated user is a staff account.
func IsStaffFrom(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIsStaff)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// TokenUserID returns a resolver that yields the caller's user ID for
// middleware running ahead of RequireAuth in the chain (the idempotency
// replay lookup). It prefers the auth context when already populated and
// otherwise verifies the bearer token itself; anonymous or invalid requests
// resolve to "".
func TokenUserID(secret string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if uid := UserIDFrom(c); uid != "" {
			return uid
		}
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			return ""
		}
		claims, err := auth.ParseToken(secret, raw)
		if err != nil {
			return ""
		}
		return claims.UserID
	}
}

// bearerToken extracts the token from an Authorization header value. The
// scheme comparison is case-insensitive per RFC 7235.
func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
