package service

import (
	"testing"
	"time"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/model"
)

func examTimingConfig() *config.Config {
	return &config.Config{
		ExamQuestionCount: 10,
		ExamCountdown:     120 * time.Second,
		ExamPerQuestion:   60 * time.Second,
	}
}

func TestCountdownRemaining(t *testing.T) {
	s := &ExamService{cfg: examTimingConfig()}
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	session := &model.TestSession{StartedAt: &start}

	cases := []struct {
		name string
		now  time.Time
		want float64
	}{
		{"FullAtStart", start, 120},
		{"PartwayThrough", start.Add(30 * time.Second), 90},
		{"ExactlyElapsed", start.Add(120 * time.Second), 0},
		{"ClampedAfterElapse", start.Add(10 * time.Minute), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.countdownRemaining(session, tc.now)
			if got != tc.want {
				t.Errorf("countdownRemaining at %v = %v, want %v", tc.now, got, tc.want)
			}
			if got < 0 {
				t.Errorf("countdownRemaining went negative: %v", got)
			}
		})
	}
}

func TestCountdownMonotone(t *testing.T) {
	s := &ExamService{cfg: examTimingConfig()}
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	session := &model.TestSession{StartedAt: &start}

	prev := s.countdownRemaining(session, start)
	for elapsed := 10 * time.Second; elapsed <= 3*time.Minute; elapsed += 10 * time.Second {
		cur := s.countdownRemaining(session, start.Add(elapsed))
		if cur > prev {
			t.Fatalf("countdown increased from %v to %v at elapsed %v", prev, cur, elapsed)
		}
		prev = cur
	}
}

func TestWindowDeadline(t *testing.T) {
	s := &ExamService{cfg: examTimingConfig()}
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	session := &model.TestSession{StartedAt: &start}

	want := start.Add(120*time.Second + 10*60*time.Second)
	if got := s.windowDeadline(session); !got.Equal(want) {
		t.Errorf("windowDeadline = %v, want %v", got, want)
	}
}
