package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "account": AccountAddress(c)})
	})
	return r
}

func TestIdentityMiddleware(t *testing.T) {
	r := newRouter(IdentityMiddleware())

	t.Run("resolves and lower-cases the account header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Account-Address", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	})

	t.Run("passes through without a header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAccount(t *testing.T) {
	r := newRouter(IdentityMiddleware(), RequireAccount())

	t.Run("rejects anonymous requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admits identified requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Account-Address", "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")

		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	t.Run("disabled without a configured key", func(t *testing.T) {
		r := newRouter(APIKeyMiddleware(""))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-API-Key", "anything")

		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		r := newRouter(APIKeyMiddleware("secret"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-API-Key", "wrong")

		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a missing key", func(t *testing.T) {
		r := newRouter(APIKeyMiddleware("secret"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admits the right key", func(t *testing.T) {
		r := newRouter(APIKeyMiddleware("secret"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-API-Key", "secret")

		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("throttles after the burst", func(t *testing.T) {
		r := newRouter(IdentityMiddleware(), RateLimitMiddleware(1, 2))

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("X-Account-Address", "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
			r.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		assert.Equal(t, http.StatusOK, codes[0])
		assert.Equal(t, http.StatusOK, codes[1])
		assert.Equal(t, http.StatusTooManyRequests, codes[2])
	})

	t.Run("limits per wallet", func(t *testing.T) {
		r := newRouter(IdentityMiddleware(), RateLimitMiddleware(1, 1))

		first := httptest.NewRecorder()
		reqA := httptest.NewRequest(http.MethodGet, "/ping", nil)
		reqA.Header.Set("X-Account-Address", "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
		r.ServeHTTP(first, reqA)
		assert.Equal(t, http.StatusOK, first.Code)

		// A different wallet has its own bucket.
		second := httptest.NewRecorder()
		reqB := httptest.NewRequest(http.MethodGet, "/ping", nil)
		reqB.Header.Set("X-Account-Address", "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
		r.ServeHTTP(second, reqB)
		assert.Equal(t, http.StatusOK, second.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newRouter(RequestIDMiddleware())

	t.Run("echoes an incoming id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-Id", "trace-123")

		r.ServeHTTP(w, req)
		assert.Equal(t, "trace-123", w.Header().Get("X-Request-Id"))
	})

	t.Run("generates one when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	})
}
