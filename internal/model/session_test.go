package model

import (
	"testing"
	"time"
)

func TestSessionState(t *testing.T) {
	now := time.Now()
	later := now.Add(10 * time.Minute)

	cases := []struct {
		name    string
		session TestSession
		want    SessionState
	}{
		{"NoStartTimestamp", TestSession{}, SessionNotStarted},
		{"ActiveRun", TestSession{StartedAt: &now, IsActive: true}, SessionActive},
		{"NormalCompletion", TestSession{StartedAt: &now, FinishedAt: &later}, SessionFinished},
		{"AdministrativeInterrupt", TestSession{StartedAt: &now}, SessionInterrupted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.session.State(); got != tc.want {
				t.Errorf("State() = %s, want %s", got, tc.want)
			}
		})
	}
}
