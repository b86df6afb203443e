package model

import (
	"testing"
	"time"
)

func TestIntakeEffectivelyOpen(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("OpenStatus", func(t *testing.T) {
		s := IntakeSetting{Status: IntakeOpen}
		if !s.EffectivelyOpen(now) {
			t.Error("open intake should accept submissions")
		}
	})

	t.Run("ClosedWithoutTimer", func(t *testing.T) {
		s := IntakeSetting{Status: IntakeClosed}
		if s.EffectivelyOpen(now) {
			t.Error("closed intake without timer should stay closed")
		}
	})

	t.Run("ClosedWithFutureTimer", func(t *testing.T) {
		s := IntakeSetting{Status: IntakeClosed, ReopenAt: &future}
		if s.EffectivelyOpen(now) {
			t.Error("reopen timer in the future should keep intake closed")
		}
	})

	t.Run("ClosedWithElapsedTimer", func(t *testing.T) {
		s := IntakeSetting{Status: IntakeClosed, ReopenAt: &past}
		if !s.EffectivelyOpen(now) {
			t.Error("elapsed reopen timer should count as open")
		}
	})
}
