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

// MessagingHandler handles staff chat and notifications.
type MessagingHandler struct {
	messagingService *service.MessagingService
	userService      *service.UserService
}

// NewMessagingHandler creates a new MessagingHandler.
func NewMessagingHandler(messagingService *service.MessagingService, userService *service.UserService) *MessagingHandler {
	return &MessagingHandler{messagingService: messagingService, userService: userService}
}

// Send godoc
// POST /api/v1/messages/:user_id
// Sends a chat message to another staff user.
func (h *MessagingHandler) Send(c *gin.Context) {
	sender, ok := h.sender(c)
	if !ok {
		return
	}

	receiverID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.messagingService.Send(c.Request.Context(), sender, receiverID, &req)
	if err != nil {
		h.failMessaging(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

// Conversation godoc
// GET /api/v1/messages/:user_id?after_id=0
// Returns the conversation with another user and marks their messages read.
func (h *MessagingHandler) Conversation(c *gin.Context) {
	sender, ok := h.sender(c)
	if !ok {
		return
	}

	partnerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	afterID, _ := strconv.Atoi(c.DefaultQuery("after_id", "0"))

	msgs, err := h.messagingService.Conversation(c.Request.Context(), sender, partnerID, afterID)
	if err != nil {
		h.failMessaging(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

// UnreadCounts godoc
// GET /api/v1/messages/unread
// Per-sender unread message totals for the caller.
func (h *MessagingHandler) UnreadCounts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	counts, err := h.messagingService.UnreadCounts(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread": counts})
}

// Notifications godoc
// GET /api/v1/notifications
// Unread in-app notifications for the caller, newest first.
func (h *MessagingHandler) Notifications(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	notifs, err := h.messagingService.UnreadNotifications(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"notifications": notifs})
}

// MarkNotificationRead godoc
// POST /api/v1/notifications/:id/read
func (h *MessagingHandler) MarkNotificationRead(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.messagingService.MarkNotificationRead(c.Request.Context(), id, claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

func (h *MessagingHandler) sender(c *gin.Context) (*model.User, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	sender, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return nil, false
	}
	return sender, true
}

func (h *MessagingHandler) failMessaging(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotConversable), errors.Is(err, service.ErrSelfMessage):
		response.Fail(c, http.StatusForbidden, response.ErrNotConversable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
