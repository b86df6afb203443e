package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func tokenContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/test/session", nil)
	return c
}

func TestSessionTokenSources(t *testing.T) {
	t.Run("PathParameter", func(t *testing.T) {
		c := tokenContext(t)
		c.Params = gin.Params{{Key: "token", Value: "from-link"}}

		if got := sessionToken(c); got != "from-link" {
			t.Errorf("sessionToken = %q, want %q", got, "from-link")
		}
	})

	t.Run("HeaderWhenRouteCarriesNoToken", func(t *testing.T) {
		c := tokenContext(t)
		c.Request.Header.Set(tokenHeader, "from-client-state")

		if got := sessionToken(c); got != "from-client-state" {
			t.Errorf("sessionToken = %q, want %q", got, "from-client-state")
		}
	})

	t.Run("PathWinsOverHeader", func(t *testing.T) {
		c := tokenContext(t)
		c.Params = gin.Params{{Key: "token", Value: "from-link"}}
		c.Request.Header.Set(tokenHeader, "from-client-state")

		if got := sessionToken(c); got != "from-link" {
			t.Errorf("sessionToken = %q, want %q", got, "from-link")
		}
	})

	t.Run("EmptyWhenNeitherPresent", func(t *testing.T) {
		c := tokenContext(t)

		if got := sessionToken(c); got != "" {
			t.Errorf("sessionToken = %q, want empty", got)
		}
	})
}
