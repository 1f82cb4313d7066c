package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vasusumeet/Personal-Finance-App/shared/token"
)

const (
	ctxUserID   = "userId"
	ctxUsername = "username"
	ctxEmail    = "email"
)

// TokenVerifier is satisfied by *token.Manager.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// AuthMiddleware rejects a missing or malformed Authorization header with 401
// and a token that fails verification with 403.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header required",
				"error":   "authentication_error",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization header format",
				"error":   "authentication_error",
			})
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Invalid or expired token",
				"error":   "authentication_error",
			})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

func GetUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
