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

// contextIDHeader carries the opaque client context id used to bind a test
// session to the first browser that opens it.
const contextIDHeader = "X-Client-Context"

// tokenHeader carries the session token when the client resumes from stored
// state instead of the original start link.
const tokenHeader = "X-Exam-Token"

// sessionToken resolves the access token from the URL or, when the route
// carries none, from the resume header. Both sources go through the same
// verification.
func sessionToken(c *gin.Context) string {
	if token := c.Param("token"); token != "" {
		return token
	}
	return c.GetHeader(tokenHeader)
}

// ExamHandler handles the candidate-facing test endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// Start godoc
// POST /api/v1/test/start
// Begins the candidate's single test attempt. The returned token is shown
// exactly once.
func (h *ExamHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	result, err := h.examService.Start(c.Request.Context(), claims.DiscordID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyAttempted):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
		case errors.Is(err, service.ErrApplicationClosed):
			response.Fail(c, http.StatusForbidden, response.ErrApplicationsClosed)
		case errors.Is(err, service.ErrInsufficientContent):
			response.Fail(c, http.StatusConflict, response.ErrInsufficientQuestions)
		case errors.Is(err, service.ErrExamNotAuthorized):
			response.Fail(c, http.StatusForbidden, response.ErrExamNotAuthorized)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// View godoc
// GET /api/v1/test/session/:token
// GET /api/v1/test/session (token via X-Exam-Token)
// Returns the candidate's session view: questions in their fixed order,
// answers so far and remaining time.
func (h *ExamHandler) View(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	view, err := h.examService.Access(c.Request.Context(),
		claims.DiscordID, sessionToken(c), h.contextID(c, claims))
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// Answer godoc
// POST /api/v1/test/session/:token/answer
// POST /api/v1/test/session/answer (token via X-Exam-Token)
// Records one answer. Re-answering the same question replaces the previous
// answer; recording the last one finishes the session.
func (h *ExamHandler) Answer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.examService.SubmitAnswer(c.Request.Context(),
		claims.DiscordID, sessionToken(c), h.contextID(c, claims), &req)
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// contextID resolves the client context id, falling back to the token JTI so
// a client that never sends the header still gets a stable binding.
func (h *ExamHandler) contextID(c *gin.Context, claims *service.Claims) string {
	if id := c.GetHeader(contextIDHeader); id != "" {
		return id
	}
	return claims.ID
}

func (h *ExamHandler) failExam(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotAuthorized):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotAuthorized)
	case errors.Is(err, service.ErrSessionInactive):
		response.Fail(c, http.StatusConflict, response.ErrSessionInactive)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
