package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/akadimia/academy-backend/internal/middleware"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/response"
	"github.com/akadimia/academy-backend/internal/service"
	"github.com/akadimia/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles the operator candidate-review endpoints.
type ReviewHandler struct {
	reviewService *service.ReviewService
	userService   *service.UserService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService, userService *service.UserService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, userService: userService}
}

// ListCandidates godoc
// GET /api/v1/review/candidates?search=...&include_hidden=true
// Lists applications with derived test facts. Hidden applications are only
// included on request.
func (h *ReviewHandler) ListCandidates(c *gin.Context) {
	includeHidden := c.Query("include_hidden") == "true"
	search := c.Query("search")

	candidates, err := h.reviewService.ListCandidates(c.Request.Context(), includeHidden, search)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"candidates": candidates})
}

// GetCandidate godoc
// GET /api/v1/review/candidates/:id
// Full detail for one candidate: application, session history and the
// per-question breakdown of the latest attempt.
func (h *ReviewHandler) GetCandidate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.reviewService.GetCandidate(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrApplicationNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// Act godoc
// POST /api/v1/review/candidates/:id/action
// Applies one review action from the fixed vocabulary to a candidate.
func (h *ReviewHandler) Act(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewActionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.reviewService.Act(c.Request.Context(), actor, id, &req); err != nil {
		h.failReview(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// GlobalControl godoc
// POST /api/v1/review/global
// Applies the global intake switch. Closing intake interrupts every active
// test session.
func (h *ReviewHandler) GlobalControl(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req model.GlobalControlRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.reviewService.GlobalControl(c.Request.Context(), actor, &req); err != nil {
		h.failReview(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// actor loads the acting staff user from the JWT claims.
func (h *ReviewHandler) actor(c *gin.Context) (*model.User, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	actor, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return nil, false
	}
	return actor, true
}

func (h *ReviewHandler) failReview(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidAction):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrMissingMessage), errors.Is(err, service.ErrMissingReopenTime):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
