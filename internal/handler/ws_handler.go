package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/akadimia/academy-backend/internal/middleware"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/response"
	"github.com/akadimia/academy-backend/internal/service"
	ws "github.com/akadimia/academy-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams staff chat conversations over WebSocket.
type WSHandler struct {
	messagingService *service.MessagingService
	userService      *service.UserService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(messagingService *service.MessagingService, userService *service.UserService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		messagingService: messagingService,
		userService:      userService,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// ChatStream godoc
// WS /ws/v1/chat/:user_id?token=...
// Upgrades to WebSocket for a live two-way chat with another staff user.
// Inbound frames send messages; the Redis subscription pushes both sides'
// messages down as they arrive.
func (h *WSHandler) ChatStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	partnerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", user.ID).Int("partner_id", partnerID).Logger()
	wsLog.Info().Msg("Chat stream connected")

	ctx := c.Request.Context()
	sub := h.messagingService.Subscribe(ctx, user.ID, partnerID)
	defer sub.Close()

	// Fan subscribed messages out to the socket until the reader loop ends.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range sub.Channel() {
			var chat model.Message
			if err := json.Unmarshal([]byte(msg.Payload), &chat); err != nil {
				continue
			}
			if err := ws.WriteTyped(conn, ws.MessageEvent{Event: ws.EventMessage, Message: chat}); err != nil {
				return
			}
		}
	}()

	for {
		var frame ws.RequestPayload
		if err := ws.ReadJSON(conn, &frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch frame.Action {
		case ws.ActionSend:
			if strings.TrimSpace(frame.Content) == "" {
				ws.WriteError(conn, "content is required")
				continue
			}
			req := &model.SendMessageRequest{Content: frame.Content}
			if _, err := h.messagingService.Send(ctx, user, partnerID, req); err != nil {
				ws.WriteError(conn, "send failed")
				continue
			}
			ws.WriteTyped(conn, ws.AckEvent{Event: ws.EventSent})
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.AckEvent{Event: ws.EventPong})
		default:
			ws.WriteError(conn, "unknown action: "+string(frame.Action))
		}
	}

	sub.Close()
	<-done
}
