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

// UserHandler handles staff account management.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List godoc
// GET /api/v1/users?rank=cadet
// Lists staff accounts, optionally filtered by rank.
func (h *UserHandler) List(c *gin.Context) {
	var rank *model.Rank
	if raw := c.Query("rank"); raw != "" {
		r := model.Rank(raw)
		if !r.Valid() {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		rank = &r
	}

	users, err := h.userService.List(c.Request.Context(), rank)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// Create godoc
// POST /api/v1/users
// Creates a staff account with a rank strictly below the caller's.
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req model.CreateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.failUser(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Update godoc
// PUT /api/v1/users/:id
// Edits a lower-ranked staff account.
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.failUser(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Delete godoc
// DELETE /api/v1/users/:id
// Removes a lower-ranked staff account.
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actor, id); err != nil {
		h.failUser(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Ranks godoc
// GET /api/v1/users/ranks
// Lists all ranks with display labels, lowest first.
func (h *UserHandler) Ranks(c *gin.Context) {
	type rankInfo struct {
		Rank  model.Rank `json:"rank"`
		Label string     `json:"label"`
		Level int        `json:"level"`
	}

	ranks := make([]rankInfo, 0, len(model.AllRanks))
	for _, r := range model.AllRanks {
		ranks = append(ranks, rankInfo{Rank: r, Label: r.Label(), Level: r.Level()})
	}

	response.Success(c, http.StatusOK, gin.H{"ranks": ranks})
}

func (h *UserHandler) actor(c *gin.Context) (*model.User, bool) {
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

func (h *UserHandler) failUser(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrDuplicateUsername):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrRankNotAllowed):
		response.Fail(c, http.StatusForbidden, response.ErrRankNotAllowed)
	case errors.Is(err, service.ErrCannotManageUser):
		response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
