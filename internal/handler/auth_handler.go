package handler

import (
	"errors"
	"net/http"

	"github.com/akadimia/academy-backend/internal/middleware"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/response"
	"github.com/akadimia/academy-backend/internal/service"
	"github.com/akadimia/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles staff authentication endpoints.
type AuthHandler struct {
	userService *service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Login godoc
// POST /api/v1/auth/login
// Validates username + password and returns a JWT. A new login replaces any
// previous session for the same account.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Logout godoc
// POST /api/v1/auth/logout
// Invalidates the caller's active session.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.userService.Logout(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the authenticated staff user's profile and capabilities.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": user,
		"capabilities": gin.H{
			"dashboard_access":    user.Rank.HasDashboardAccess(),
			"add_users":           user.Rank.CanAddUsers(),
			"manage_assignments":  user.Rank.CanManageAssignments(),
			"review_applications": user.Rank.CanReviewApplications(),
			"manageable_ranks":    user.Rank.ManageableRanks(),
		},
	})
}
