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

// EvaluationHandler handles trainer-cadet assignments and evaluations.
type EvaluationHandler struct {
	evaluationService *service.EvaluationService
	userService       *service.UserService
}

// NewEvaluationHandler creates a new EvaluationHandler.
func NewEvaluationHandler(evaluationService *service.EvaluationService, userService *service.UserService) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService, userService: userService}
}

// CreateAssignment godoc
// POST /api/v1/assignments
// Pairs a trainer with a cadet.
func (h *EvaluationHandler) CreateAssignment(c *gin.Context) {
	var req model.CreateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.evaluationService.CreateAssignment(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPairing):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		case errors.Is(err, service.ErrDuplicateAssignment):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}

// DeleteAssignment godoc
// DELETE /api/v1/assignments/:id
func (h *EvaluationHandler) DeleteAssignment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.evaluationService.DeleteAssignment(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListAssignments godoc
// GET /api/v1/assignments
// Command staff see every pairing; trainers and cadets see their own.
func (h *EvaluationHandler) ListAssignments(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var filter *int
	if !user.Rank.CanManageAssignments() {
		filter = &user.ID
	}

	assignments, err := h.evaluationService.ListAssignments(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// CreateEvaluation godoc
// POST /api/v1/evaluations/:cadet_id
// Records a trainer's review of an assigned cadet.
func (h *EvaluationHandler) CreateEvaluation(c *gin.Context) {
	trainer, ok := h.caller(c)
	if !ok {
		return
	}

	cadetID, err := strconv.Atoi(c.Param("cadet_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateEvaluationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	eval, err := h.evaluationService.CreateEvaluation(c.Request.Context(), trainer, cadetID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotAssigned) {
			response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"evaluation": eval})
}

// ListEvaluations godoc
// GET /api/v1/evaluations
// Trainers see evaluations they gave; cadets see evaluations they received.
func (h *EvaluationHandler) ListEvaluations(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	evals, err := h.evaluationService.ListEvaluations(c.Request.Context(), user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"evaluations": evals})
}

func (h *EvaluationHandler) caller(c *gin.Context) (*model.User, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return nil, false
	}
	return user, true
}
