package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSend Action = "send"
	ActionPing Action = "ping"
)

// RequestPayload is a client chat frame.
type RequestPayload struct {
	Action  Action `json:"action"`
	Content string `json:"content,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventMessage Event = "message"
	EventSent    Event = "sent"
	EventPong    Event = "pong"
)

// MessageEvent delivers a chat message to the subscriber.
type MessageEvent struct {
	Event   Event       `json:"event"`
	Message interface{} `json:"message"`
}

// AckEvent confirms a client action.
type AckEvent struct {
	Event Event `json:"event"`
}

// ErrorResponse reports a failed client action.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
