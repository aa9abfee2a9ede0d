package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bursary/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// newLimitedEngine mounts the limiter the way the router does: after the
// middleware that identifies the client, here stubbed by a header.
func newLimitedEngine(limiter *middleware.InMemoryRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Client"); id != "" {
			c.Set("client_id", id)
		}
	})
	r.Use(middleware.RateLimit(limiter))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func ping(engine *gin.Engine, client string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if client != "" {
		req.Header.Set("X-Client", client)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitKeysByClientID(t *testing.T) {
	engine := newLimitedEngine(middleware.NewInMemoryRateLimiter(2, time.Minute))

	assert.Equal(t, http.StatusOK, ping(engine, "gateway"))
	assert.Equal(t, http.StatusOK, ping(engine, "gateway"))
	assert.Equal(t, http.StatusTooManyRequests, ping(engine, "gateway"))

	// A different client shares the source IP but has its own budget.
	assert.Equal(t, http.StatusOK, ping(engine, "dashboard"))
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	engine := newLimitedEngine(middleware.NewInMemoryRateLimiter(2, time.Minute))

	assert.Equal(t, http.StatusOK, ping(engine, ""))
	assert.Equal(t, http.StatusOK, ping(engine, ""))
	assert.Equal(t, http.StatusTooManyRequests, ping(engine, ""))
}
