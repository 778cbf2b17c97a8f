package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performRequest(router *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

// A per-second rate of 1 with burst 2 admits two immediate requests from one
// IP and rejects the third.
func TestIPRateLimitEnforcesBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(1, 60, 2, 3)
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.IPRateLimit())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, performRequest(router, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, performRequest(router, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, performRequest(router, "10.0.0.1"))

	// A different IP has its own budget.
	assert.Equal(t, http.StatusOK, performRequest(router, "10.0.0.2"))
}

func TestAuthRateLimitIsStricter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(100, 60, 100, 1)
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.AuthRateLimit())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, performRequest(router, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, performRequest(router, "10.0.0.1"))
}
