package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toryoki/jobhub/internal/actorctx"
	"github.com/toryoki/jobhub/internal/auth"
	"github.com/toryoki/jobhub/internal/domain/user"
	"github.com/toryoki/jobhub/internal/repo/postgres"
)

// TokenVerifier checks a raw session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserProvider resolves the user a verified token belongs to.
type UserProvider interface {
	GetByID(ctx context.Context, id string, includeInactive bool) (user.User, error)
}

// AuthMiddleware guards routes that require a logged-in user.
type AuthMiddleware struct {
	tokens TokenVerifier
	users  UserProvider
}

func NewAuthMiddleware(tokens TokenVerifier, users UserProvider) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Protect rejects requests without a valid session. A token is read from
// the Authorization header (Bearer scheme) or, failing that, the "jwt"
// cookie. The caller must still exist, be active, and must not have
// changed their password after the token was issued.
func (m *AuthMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			abortUnauthorized(c, "You are not logged in. Please log in to get access.")
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Your token has expired. Please log in again.")
				return
			}
			abortUnauthorized(c, "Invalid token. Please log in again.")
			return
		}

		u, err := m.users.GetByID(c.Request.Context(), claims.UserID, false)
		if err != nil {
			if errors.Is(err, postgres.ErrUserNotFound) {
				abortUnauthorized(c, "The user belonging to this token no longer exists.")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"code": "internal_error", "message": "could not authenticate request"},
			})
			return
		}

		if u.ChangedPasswordAfter(claims.IssuedAt) {
			abortUnauthorized(c, "User recently changed password. Please log in again.")
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserEmailKey, u.Email)
		c.Set(CtxUserRoleKey, u.Role)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie("jwt"); err == nil {
		return cookie
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": "unauthorized", "message": message, "requestId": c.GetString("requestID")},
	})
}
