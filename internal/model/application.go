package model

import "time"

// ApplicationStatus enumerates the candidate lifecycle.
type ApplicationStatus string

const (
	ApplicationStatusOpen      ApplicationStatus = "open"
	ApplicationStatusTesting   ApplicationStatus = "testing"
	ApplicationStatusCompleted ApplicationStatus = "completed"
	ApplicationStatusClosed    ApplicationStatus = "closed"
)

// Application is a candidate's intake and lifecycle record. At most one
// exists per Discord identity, ever.
type Application struct {
	ID            int               `json:"id"`
	DiscordID     string            `json:"discord_id"`
	CharacterName string            `json:"character_name"`
	Status        ApplicationStatus `json:"status"`
	SubmittedAt   time.Time         `json:"submitted_at"`
	TestStartedAt *time.Time        `json:"test_started_at,omitempty"`
	ClosedMessage *string           `json:"closed_message,omitempty"`
	ReopenAt      *time.Time        `json:"reopen_at,omitempty"`
	IsHidden      bool              `json:"is_hidden"`
	// FallbackNote stores content that could not be delivered over Discord
	// (e.g. portal credentials when the DM relay fails).
	FallbackNote *string `json:"fallback_note,omitempty"`
}

// SubmitApplicationRequest is the payload for candidate intake.
type SubmitApplicationRequest struct {
	CharacterName string `json:"character_name" binding:"required,min=2,max=100"`
}

// CandidateSummary is an application row enriched with derived review fields.
type CandidateSummary struct {
	Application      Application `json:"application"`
	LastScore        *float64    `json:"last_score,omitempty"`
	CurrentlyTesting bool        `json:"currently_testing"`
	Interrupted      bool        `json:"interrupted"`
}

// ReviewAction is the fixed vocabulary of per-candidate operator actions.
type ReviewAction string

const (
	ActionPreliminaryAccept ReviewAction = "preliminary_accept"
	ActionFinalAccept       ReviewAction = "final_accept"
	ActionReject            ReviewAction = "reject"
	ActionSendCustomMessage ReviewAction = "send_custom_message"
	ActionCloseWithMessage  ReviewAction = "close_with_message"
	ActionCloseWithTimer    ReviewAction = "close_with_timer"
	ActionOpen              ReviewAction = "open"
	ActionHide              ReviewAction = "hide"
	ActionUnhide            ReviewAction = "unhide"
	ActionDelete            ReviewAction = "delete"
)

// Valid reports whether a is part of the review action vocabulary.
func (a ReviewAction) Valid() bool {
	switch a {
	case ActionPreliminaryAccept, ActionFinalAccept, ActionReject,
		ActionSendCustomMessage, ActionCloseWithMessage, ActionCloseWithTimer,
		ActionOpen, ActionHide, ActionUnhide, ActionDelete:
		return true
	}
	return false
}

// ReviewActionRequest is the payload for a per-candidate review action.
type ReviewActionRequest struct {
	Action  ReviewAction `json:"action" binding:"required"`
	Message string       `json:"message" binding:"omitempty,max=2000"`
	// ReopenEpoch is a Unix timestamp used by close_with_timer.
	ReopenEpoch *int64 `json:"reopen_epoch,omitempty"`
}

// GlobalControl is the fixed vocabulary for the global intake switch.
type GlobalControl string

const (
	ControlOpenAll             GlobalControl = "open_all"
	ControlCloseAllWithMessage GlobalControl = "close_all_with_message"
	ControlCloseAllWithTimer   GlobalControl = "close_all_with_timer"
)

// Valid reports whether g is a known global control.
func (g GlobalControl) Valid() bool {
	switch g {
	case ControlOpenAll, ControlCloseAllWithMessage, ControlCloseAllWithTimer:
		return true
	}
	return false
}

// GlobalControlRequest is the payload for the global intake control endpoint.
type GlobalControlRequest struct {
	Control     GlobalControl `json:"control" binding:"required"`
	Message     string        `json:"message" binding:"omitempty,max=2000"`
	ReopenEpoch *int64        `json:"reopen_epoch,omitempty"`
}
