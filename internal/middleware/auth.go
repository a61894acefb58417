package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookAuth returns a gin middleware enforcing the shared chainhook bearer
// secret. A mismatch rejects the request before any payload parsing. The
// secret itself is never logged. An empty configured secret rejects every
// delivery.
func WebhookAuth(token string, logger *zap.Logger) gin.HandlerFunc {
	expected := []byte("Bearer " + token)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token == "" || subtle.ConstantTimeCompare([]byte(header), expected) != 1 {
			logger.Warn("unauthorized webhook request",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// CORS returns a permissive CORS middleware for the dashboard API.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
