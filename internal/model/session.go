package model

import "time"

// SessionState is the explicit tagged state of a test session. It is derived
// from the persisted fields; nothing outside the exam service mutates them.
type SessionState string

const (
	SessionNotStarted  SessionState = "NOT_STARTED"
	SessionActive      SessionState = "ACTIVE"
	SessionFinished    SessionState = "FINISHED"
	SessionInterrupted SessionState = "INTERRUPTED"
)

// TestSession is one timed attempt at the fixed 10-question test, bound to
// one application and one unguessable access token.
type TestSession struct {
	ID         int        `json:"id"`
	AppID      int        `json:"application_id"`
	Token      string     `json:"-"`
	DiscordID  string     `json:"discord_id"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	IsActive   bool       `json:"is_active"`
	Score      float64    `json:"score"`
	// QuestionIDs is the fixed presentation order chosen at start time.
	QuestionIDs []int `json:"-"`
}

// State derives the tagged session state from the persisted fields.
// An inactive session with a start timestamp but no finish timestamp was
// interrupted administratively; that end state stays distinguishable from
// normal completion.
func (s *TestSession) State() SessionState {
	switch {
	case s.StartedAt == nil:
		return SessionNotStarted
	case s.IsActive:
		return SessionActive
	case s.FinishedAt != nil:
		return SessionFinished
	default:
		return SessionInterrupted
	}
}

// Answer records a candidate's response to one question of a session.
// SelectedIndex is nil when the question timed out unanswered.
type Answer struct {
	ID            int       `json:"id"`
	SessionID     int       `json:"session_id"`
	QuestionID    int       `json:"question_id"`
	SelectedIndex *int      `json:"selected_index,omitempty"`
	IsCorrect     bool      `json:"is_correct"`
	AnsweredAt    time.Time `json:"answered_at"`
}

// SubmitAnswerRequest is the payload for answering one question.
type SubmitAnswerRequest struct {
	QuestionID    int  `json:"question_id" binding:"required"`
	SelectedIndex *int `json:"selected_index"`
}

// SessionView is what a candidate sees on (re)load of the exam page.
// CountdownRemaining is the unelapsed part of the initial reading countdown,
// so a reload resumes it instead of restarting it.
type SessionView struct {
	SessionID          int              `json:"session_id"`
	State              SessionState     `json:"state"`
	Questions          []PublicQuestion `json:"questions"`
	Answered           map[int]int      `json:"answered"`
	RemainingSeconds   float64          `json:"remaining_seconds"`
	CountdownRemaining float64          `json:"countdown_remaining"`
}

// AnswerBreakdown is one row of the operator's per-candidate detail view.
type AnswerBreakdown struct {
	Question      PublicQuestion `json:"question"`
	SelectedIndex *int           `json:"selected_index,omitempty"`
	CorrectIndex  int            `json:"correct_index"`
	IsCorrect     bool           `json:"is_correct"`
}
