package model

// Rank is an organizational rank in the academy hierarchy.
type Rank string

const (
	RankCadet            Rank = "cadet"
	RankTrainer          Rank = "trainer"
	RankDeputyCommander  Rank = "deputy_commander"
	RankAcademyCommander Rank = "academy_commander"
	RankDeputyChief      Rank = "deputy_chief"
	RankPoliceChief      Rank = "police_chief"
	RankDev              Rank = "dev"
)

// rankLevels defines the total order over ranks. Higher value = higher authority.
var rankLevels = map[Rank]int{
	RankCadet:            0,
	RankTrainer:          1,
	RankDeputyCommander:  2,
	RankAcademyCommander: 3,
	RankDeputyChief:      4,
	RankPoliceChief:      5,
	RankDev:              6,
}

// rankLabels maps ranks to their display names.
var rankLabels = map[Rank]string{
	RankCadet:            "Cadet",
	RankTrainer:          "Trainer",
	RankDeputyCommander:  "Deputy Commander",
	RankAcademyCommander: "Academy Commander",
	RankDeputyChief:      "Deputy Chief",
	RankPoliceChief:      "Police Chief",
	RankDev:              "Developer",
}

// AllRanks lists every rank from lowest to highest level.
var AllRanks = []Rank{
	RankCadet,
	RankTrainer,
	RankDeputyCommander,
	RankAcademyCommander,
	RankDeputyChief,
	RankPoliceChief,
	RankDev,
}

// Valid reports whether r is a known rank.
func (r Rank) Valid() bool {
	_, ok := rankLevels[r]
	return ok
}

// Level returns the hierarchy level of the rank. Unknown ranks map to 0 (cadet).
func (r Rank) Level() int {
	return rankLevels[r]
}

// Label returns the human-readable display name of the rank.
func (r Rank) Label() string {
	if l, ok := rankLabels[r]; ok {
		return l
	}
	return string(r)
}

// HasDashboardAccess reports whether the rank can access the staff dashboard.
// Everyone above trainer.
func (r Rank) HasDashboardAccess() bool {
	return r.Level() > rankLevels[RankTrainer]
}

// CanAddUsers reports whether the rank can create new staff accounts.
func (r Rank) CanAddUsers() bool {
	return r.Level() > rankLevels[RankTrainer]
}

// CanManageAssignments reports whether the rank can pair trainers with cadets.
func (r Rank) CanManageAssignments() bool {
	return r.Level() > rankLevels[RankTrainer]
}

// CanReviewApplications reports whether the rank can view and act on
// recruitment applications. Everyone above cadet.
func (r Rank) CanReviewApplications() bool {
	return r.Level() > rankLevels[RankCadet]
}

// CanManage reports whether an actor of rank r may edit or delete the target
// user. Self-management is always denied; otherwise the actor must hold a
// strictly higher rank.
func (r Rank) CanManage(actorID int, target *User) bool {
	if target == nil || actorID == target.ID {
		return false
	}
	return r.Level() > target.Rank.Level()
}

// ManageableRanks returns the ranks strictly below r, i.e. the ranks an actor
// may assign when creating or editing users.
func (r Rank) ManageableRanks() []Rank {
	var out []Rank
	for _, candidate := range AllRanks {
		if candidate.Level() < r.Level() {
			out = append(out, candidate)
		}
	}
	return out
}
