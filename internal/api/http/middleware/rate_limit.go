package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware throttles mutation-heavy routes per calling
// wallet (falling back to client IP for anonymous reads). Limiters are
// kept per key; an idle map entry costs a few words, so no eviction.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = l
		}
		return l
	}

	return func(c *gin.Context) {
		key := AccountAddress(c)
		if key == "" {
			key = c.ClientIP()
		}

		if !limiterFor(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":    false,
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
