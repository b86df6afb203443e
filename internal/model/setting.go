package model

import "time"

// IntakeStatus is the global application intake switch.
type IntakeStatus string

const (
	IntakeOpen   IntakeStatus = "open"
	IntakeClosed IntakeStatus = "closed"
)

// IntakeSetting is the singleton row controlling the recruitment window.
type IntakeSetting struct {
	Status        IntakeStatus `json:"status"`
	ClosedMessage *string      `json:"closed_message,omitempty"`
	ReopenAt      *time.Time   `json:"reopen_at,omitempty"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// EffectivelyOpen reports whether intake accepts submissions at the given
// instant. A reopen timestamp in the past counts as open even when the
// stored status is still closed.
func (s *IntakeSetting) EffectivelyOpen(now time.Time) bool {
	if s.Status == IntakeOpen {
		return true
	}
	return s.ReopenAt != nil && !s.ReopenAt.After(now)
}

// IntakeStatusResponse is the public application-status payload.
type IntakeStatusResponse struct {
	Open          bool   `json:"open"`
	ClosedMessage string `json:"closed_message,omitempty"`
	ReopenEpoch   *int64 `json:"reopen_epoch,omitempty"`
}
