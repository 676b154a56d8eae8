package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware guards owner-only operations (minting, project
// administration, application review). With no key configured the
// admin surface is disabled outright rather than left open.
func APIKeyMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"ok":    false,
				"error": "admin API disabled: no API_KEY configured",
			})
			return
		}

		key := c.GetHeader("X-API-Key")

		if key == "" || key != expected {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "invalid API key",
			})
			return
		}

		c.Next()
	}
}
