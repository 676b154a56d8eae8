package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const accountKey = "account_address"

// IdentityMiddleware resolves the calling wallet from the
// X-Account-Address header. The original system reads the sender from
// the signed transaction; here the reverse proxy in front of this
// service is expected to have authenticated the wallet.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := strings.TrimSpace(c.GetHeader("X-Account-Address"))
		if addr != "" {
			c.Set(accountKey, strings.ToLower(addr))
		}
		c.Next()
	}
}

// AccountAddress returns the caller's wallet address, or "" when the
// request carried none.
func AccountAddress(c *gin.Context) string {
	return c.GetString(accountKey)
}

// RequireAccount aborts requests that did not identify a wallet.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if AccountAddress(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "X-Account-Address header required",
			})
			return
		}
		c.Next()
	}
}
