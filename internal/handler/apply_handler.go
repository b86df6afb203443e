package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/middleware"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/response"
	"github.com/akadimia/academy-backend/internal/service"
	"github.com/akadimia/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ApplyHandler handles the public candidate intake flow.
type ApplyHandler struct {
	cfg           *config.Config
	intakeService *service.IntakeService
}

// NewApplyHandler creates a new ApplyHandler.
func NewApplyHandler(cfg *config.Config, intakeService *service.IntakeService) *ApplyHandler {
	return &ApplyHandler{cfg: cfg, intakeService: intakeService}
}

// Status godoc
// GET /api/v1/apply/status
// Public intake status: open/closed, closure message and reopen time.
func (h *ApplyHandler) Status(c *gin.Context) {
	status, err := h.intakeService.Status(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// DiscordLogin godoc
// GET /api/v1/apply/discord/login
// Redirects the candidate to the Discord consent page.
func (h *ApplyHandler) DiscordLogin(c *gin.Context) {
	authorizeURL, err := h.intakeService.BeginLogin(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authorizeURL)
}

// DiscordCallback godoc
// GET /api/v1/apply/discord/callback?code=...&state=...
// Completes the OAuth exchange and redirects back to the frontend with the
// applicant token attached. Replayed codes redirect with an error flag.
func (h *ApplyHandler) DiscordCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendRedirect(url.Values{"error": {"oauth_failed"}}))
		return
	}

	token, _, err := h.intakeService.CompleteLogin(c.Request.Context(), state, code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOAuthState) {
			c.Redirect(http.StatusTemporaryRedirect, h.frontendRedirect(url.Values{"error": {"oauth_replayed"}}))
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, h.frontendRedirect(url.Values{"error": {"oauth_failed"}}))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.frontendRedirect(url.Values{"token": {token}}))
}

// Submit godoc
// POST /api/v1/apply
// Creates the candidate's application. One per Discord identity, ever.
func (h *ApplyHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitApplicationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	app, err := h.intakeService.Submit(c.Request.Context(), claims.DiscordID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateSubmission):
			response.Fail(c, http.StatusConflict, response.ErrDuplicateSubmission)
		case errors.Is(err, service.ErrIntakeClosed):
			response.Fail(c, http.StatusForbidden, response.ErrApplicationsClosed)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"application": app})
}

// MyApplication godoc
// GET /api/v1/apply/me
// Returns the applicant's own application and latest test state.
func (h *ApplyHandler) MyApplication(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	app, state, err := h.intakeService.MyApplication(c.Request.Context(), claims.DiscordID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if app == nil {
		response.Success(c, http.StatusOK, gin.H{"application": nil})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"application": app,
		"test_state":  state,
	})
}

func (h *ApplyHandler) frontendRedirect(params url.Values) string {
	return h.cfg.FrontendURL + "/apply?" + params.Encode()
}
