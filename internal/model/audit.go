package model

import "time"

// AuditAction tags a state-changing action in the audit log.
type AuditAction string

const (
	AuditApplySubmit       AuditAction = "apply_submit"
	AuditStartTest         AuditAction = "start_test"
	AuditFinishTest        AuditAction = "finish_test"
	AuditPreliminaryAccept AuditAction = "preliminary_accept"
	AuditFinalAccept       AuditAction = "final_accept"
	AuditReject            AuditAction = "reject"
	AuditSendMessage       AuditAction = "send_custom_message"
	AuditCloseApplication  AuditAction = "close_application"
	AuditOpenApplication   AuditAction = "open_application"
	AuditHideApplication   AuditAction = "hide_application"
	AuditDeleteApplication AuditAction = "delete_application"
	AuditGlobalControl     AuditAction = "global_control"
	AuditUserCreate        AuditAction = "user_create"
	AuditUserUpdate        AuditAction = "user_update"
	AuditUserDelete        AuditAction = "user_delete"
)

// AuditEntry is an immutable append-only record of a state-changing action.
// Actor is nil for candidate-initiated or system actions.
type AuditEntry struct {
	ID        int         `json:"id"`
	ActorID   *int        `json:"actor_id,omitempty"`
	Action    AuditAction `json:"action"`
	Target    string      `json:"target"`
	Details   string      `json:"details,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
