package middleware

import (
	"net/http"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireRank gates a route behind a rank predicate evaluated against the
// staff JWT, e.g. RequireRank(model.Rank.CanReviewApplications).
func RequireRank(allowed func(model.Rank) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !allowed(claims.Rank) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}

		c.Next()
	}
}

// RequireMinRank gates a route behind a strict rank floor: the caller must
// hold a rank strictly above the given one.
func RequireMinRank(above model.Rank) gin.HandlerFunc {
	return RequireRank(func(r model.Rank) bool {
		return r.Level() > above.Level()
	})
}
