package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limiterRouter(rate int, interval time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(rate, interval).Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRateLimiter(t *testing.T) {
	t.Run("AllowsUpToRate", func(t *testing.T) {
		r := limiterRouter(3, time.Minute)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("request %d: status %d", i+1, w.Code)
			}
		}
	})

	t.Run("RejectsOverRate", func(t *testing.T) {
		r := limiterRouter(2, time.Minute)
		var last int
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			r.ServeHTTP(w, req)
			last = w.Code
		}
		if last != http.StatusTooManyRequests {
			t.Errorf("third request: status %d, want 429", last)
		}
	})

	t.Run("RefillsAfterInterval", func(t *testing.T) {
		r := limiterRouter(1, 30*time.Millisecond)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("first request: status %d", w.Code)
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("second request: status %d, want 429", w.Code)
		}

		time.Sleep(40 * time.Millisecond)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Errorf("post-refill request: status %d, want 200", w.Code)
		}
	})
}
