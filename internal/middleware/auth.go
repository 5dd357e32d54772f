package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"spendsnap/internal/logger"
	"spendsnap/internal/session"
)

// Context keys shared with the handlers.
const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

// AuthMiddleware verifies the bearer token and sets the user in the context.
// API clients must present the token in the Authorization header; the
// session cookie is only honoured on page routes.
func AuthMiddleware(provider session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		sess, err := provider.CurrentSession(c.Request.Context(), c.Request)
		if err != nil {
			logger.Get().Errorw("session lookup failed", "error", err, "path", c.Request.URL.Path)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to verify session"})
			c.Abort()
			return
		}
		if sess == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, sess.UserID)
		c.Set(EmailKey, sess.Email)
		c.Next()
	}
}
