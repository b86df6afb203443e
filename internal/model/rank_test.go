package model

import "testing"

func TestRankHierarchy(t *testing.T) {
	t.Run("OrderIsStrict", func(t *testing.T) {
		for i := 1; i < len(AllRanks); i++ {
			lower, higher := AllRanks[i-1], AllRanks[i]
			if lower.Level() >= higher.Level() {
				t.Errorf("%s (level %d) should rank below %s (level %d)",
					lower, lower.Level(), higher, higher.Level())
			}
		}
	})

	t.Run("UnknownRankInvalid", func(t *testing.T) {
		if Rank("sergeant").Valid() {
			t.Error("unknown rank reported valid")
		}
		if Rank("sergeant").Level() != 0 {
			t.Error("unknown rank should map to level 0")
		}
	})

	t.Run("DashboardAccess", func(t *testing.T) {
		withAccess := []Rank{RankDeputyCommander, RankAcademyCommander, RankDeputyChief, RankPoliceChief, RankDev}
		withoutAccess := []Rank{RankCadet, RankTrainer}
		for _, r := range withAccess {
			if !r.HasDashboardAccess() {
				t.Errorf("%s should have dashboard access", r)
			}
		}
		for _, r := range withoutAccess {
			if r.HasDashboardAccess() {
				t.Errorf("%s should not have dashboard access", r)
			}
		}
	})

	t.Run("ReviewAccess", func(t *testing.T) {
		if RankCadet.CanReviewApplications() {
			t.Error("cadet should not review applications")
		}
		if !RankTrainer.CanReviewApplications() {
			t.Error("trainer should review applications")
		}
	})
}

func TestRankCanManage(t *testing.T) {
	commander := &User{ID: 1, Rank: RankAcademyCommander}
	trainer := &User{ID: 2, Rank: RankTrainer}

	t.Run("HigherManagesLower", func(t *testing.T) {
		if !commander.Rank.CanManage(commander.ID, trainer) {
			t.Error("commander should manage trainer")
		}
	})

	t.Run("LowerCannotManageHigher", func(t *testing.T) {
		if trainer.Rank.CanManage(trainer.ID, commander) {
			t.Error("trainer should not manage commander")
		}
	})

	t.Run("EqualRankDenied", func(t *testing.T) {
		peer := &User{ID: 3, Rank: RankAcademyCommander}
		if commander.Rank.CanManage(commander.ID, peer) {
			t.Error("equal ranks should not manage each other")
		}
	})

	t.Run("SelfDenied", func(t *testing.T) {
		if commander.Rank.CanManage(commander.ID, commander) {
			t.Error("self-management should be denied")
		}
	})

	t.Run("NilTargetDenied", func(t *testing.T) {
		if commander.Rank.CanManage(commander.ID, nil) {
			t.Error("nil target should be denied")
		}
	})
}

func TestManageableRanks(t *testing.T) {
	t.Run("DevManagesEverythingBelow", func(t *testing.T) {
		got := RankDev.ManageableRanks()
		if len(got) != len(AllRanks)-1 {
			t.Fatalf("expected %d manageable ranks, got %d", len(AllRanks)-1, len(got))
		}
		for _, r := range got {
			if r == RankDev {
				t.Error("dev should not be able to assign its own rank")
			}
		}
	})

	t.Run("CadetManagesNothing", func(t *testing.T) {
		if got := RankCadet.ManageableRanks(); len(got) != 0 {
			t.Errorf("cadet should manage no ranks, got %v", got)
		}
	})
}
