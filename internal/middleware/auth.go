package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pixistaking/backend/internal/apperrors"
	"github.com/pixistaking/backend/internal/services/session"
	"github.com/pixistaking/backend/internal/utils"
)

const tokenKey = "token"

// AuthMiddleware verifies JWT tokens and adds user info to context. When a
// denylist is configured, revoked tokens are rejected as well; pass nil to
// run without one. A failing denylist lookup is logged and the token is
// accepted, so a redis outage degrades to expiry-only revocation instead of
// locking everyone out.
func AuthMiddleware(denylist *session.Denylist, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if denylist != nil {
			revoked, err := denylist.Contains(c.Request.Context(), tokenString)
			if err != nil {
				zap.L().Error("token denylist lookup failed", zap.Error(err))
			} else if revoked {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("is_admin", claims.IsAdmin)
		c.Set(tokenKey, tokenString)

		c.Next()
	}
}

// AdminMiddleware ensures the user has admin privileges
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("is_admin")
		if !exists || !isAdmin.(bool) {
			err := apperrors.NewAuthorization("Admin access required")
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractToken gets the token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	parts := strings.Split(bearerToken, " ")
	if len(parts) == 2 {
		return parts[1]
	}
	return ""
}
