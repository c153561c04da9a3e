package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mkaraca/userhub/internal/auth"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

const ctxUserIDKey = "auth.userID"

// RequireAuth guards protected routes. A missing header is 401; a token that
// fails verification (bad signature, expired, garbage) is 400, matching the
// published contract. The token and its claims are never logged.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthenticated",
					"message": "Access Denied",
				},
			})
			return
		}

		// strip the conventional prefix when present
		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := m.jwt.VerifyToken(raw)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "invalid_token",
					"message": "Invalid Token",
				},
			})
			return
		}

		// Stash the caller's identity on the context
		c.Set(ctxUserIDKey, claims.UserID)

		c.Next()
	}
}

// UserIDFromContext lets handlers read the identity without knowing the
// magic key.
func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
