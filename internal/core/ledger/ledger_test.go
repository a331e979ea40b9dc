package ledger

import (
	"math/rand"
	"testing"
)

func roster() map[string]Team {
	return map[string]Team{
		"p1": Home, "p2": Home, "p3": Home,
		"q1": Away, "q2": Away,
	}
}

func TestScore_RejectsOversizedPlayerRemoval(t *testing.T) {
	s := NewScore(roster())
	s.AddPlayerPoints("p1", 2, Home)

	if s.RemovePlayerPoints("p1", 3, Home) {
		t.Error("removal larger than player total was applied")
	}
	if got := s.Player("p1"); got != 2 {
		t.Errorf("player p1 = %d, want 2", got)
	}
	if got := s.Team(Home); got != 2 {
		t.Errorf("home = %d, want 2", got)
	}
}

func TestScore_TeamRemovalClamps(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *Score)
		remove  int
		want    int
		applied bool
	}{
		{"empty stays zero", func(s *Score) {}, 3, 0, false},
		{"clamps to zero", func(s *Score) { s.AddTeamPoints(Away, 2) }, 3, 0, true},
		{"partial", func(s *Score) { s.AddTeamPoints(Away, 5) }, 2, 3, true},
		{"stops at attributed floor", func(s *Score) {
			s.AddPlayerPoints("q1", 3, Away)
			s.AddTeamPoints(Away, 1)
		}, 3, 3, true},
		{"nothing above floor", func(s *Score) { s.AddPlayerPoints("q2", 2, Away) }, 1, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScore(roster())
			tt.setup(s)
			if got := s.RemoveTeamPoints(Away, tt.remove); got != tt.applied {
				t.Errorf("applied = %v, want %v", got, tt.applied)
			}
			if got := s.Team(Away); got != tt.want {
				t.Errorf("away = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_MembershipIsExplicit(t *testing.T) {
	s := NewScore(roster())

	tests := []struct {
		name string
		id   string
		team Team
	}{
		{"wrong team", "p2", Away},
		{"unknown player", "zz", Home},
		{"invalid team", "p1", Team("visitors")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s.AddPlayerPoints(tt.id, 2, tt.team) {
				t.Error("add was applied")
			}
		})
	}
	if s.Team(Home) != 0 || s.Team(Away) != 0 {
		t.Errorf("team totals moved: home=%d away=%d", s.Team(Home), s.Team(Away))
	}
}

func TestScore_NonPositivePointsIgnored(t *testing.T) {
	s := NewScore(roster())
	for _, n := range []int{0, -2} {
		if s.AddTeamPoints(Home, n) || s.AddPlayerPoints("p1", n, Home) {
			t.Errorf("points=%d applied", n)
		}
	}
}

func TestLedger_InvariantUnderPlayerOperations(t *testing.T) {
	members := roster()
	ids := []string{"p1", "p2", "p3", "q1", "q2"}
	rng := rand.New(rand.NewSource(42))

	s := NewScore(members)
	f := NewFouls(members, 5)

	for i := 0; i < 5000; i++ {
		id := ids[rng.Intn(len(ids))]
		team := members[id]
		n := 1 + rng.Intn(3)
		switch rng.Intn(4) {
		case 0:
			s.AddPlayerPoints(id, n, team)
		case 1:
			s.RemovePlayerPoints(id, n, team)
		case 2:
			f.AddPlayerFoul(id, team)
		case 3:
			f.RemovePlayerFoul(id, team)
		}

		for _, tm := range []Team{Home, Away} {
			if s.Team(tm) != s.Attributed(tm) {
				t.Fatalf("step %d: %s score %d != player sum %d", i, tm, s.Team(tm), s.Attributed(tm))
			}
			if f.Team(tm) != f.t.PlayerSum(tm) {
				t.Fatalf("step %d: %s fouls %d != player sum %d", i, tm, f.Team(tm), f.t.PlayerSum(tm))
			}
		}
		for _, pid := range ids {
			if s.Player(pid) < 0 || f.Player(pid) < 0 {
				t.Fatalf("step %d: negative player counter for %s", i, pid)
			}
		}
	}
}

func TestScore_TeamNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewScore(nil)
	for i := 0; i < 2000; i++ {
		n := 1 + rng.Intn(3)
		if rng.Intn(2) == 0 {
			s.AddTeamPoints(Home, n)
		} else {
			s.RemoveTeamPoints(Home, n)
		}
		if s.Team(Home) < 0 {
			t.Fatalf("step %d: home score negative", i)
		}
	}
}

func TestFouls_RemoveTeamFoulAtZero(t *testing.T) {
	f := NewFouls(roster(), 5)
	if f.RemoveTeamFoul(Away) {
		t.Error("removal at zero reported applied")
	}
	if f.Team(Away) != 0 {
		t.Errorf("away fouls = %d, want 0", f.Team(Away))
	}
}

func TestFouls_PlayerRemovalGuard(t *testing.T) {
	f := NewFouls(roster(), 5)
	f.AddTeamFoul(Home)

	if f.RemovePlayerFoul("p1", Home) {
		t.Error("removing a foul from a clean player was applied")
	}
	if f.Team(Home) != 1 {
		t.Errorf("home fouls = %d, want 1", f.Team(Home))
	}

	f.AddPlayerFoul("p1", Home)
	if !f.RemovePlayerFoul("p1", Home) {
		t.Error("removal of an existing foul refused")
	}
	if f.Player("p1") != 0 || f.Team(Home) != 1 {
		t.Errorf("p1=%d home=%d, want 0/1", f.Player("p1"), f.Team(Home))
	}
}

func TestFouls_LimitReached(t *testing.T) {
	f := NewFouls(roster(), 0)
	if f.Limit() != DefaultFoulLimit {
		t.Fatalf("limit = %d, want default %d", f.Limit(), DefaultFoulLimit)
	}

	for i := 0; i < 4; i++ {
		f.AddPlayerFoul("q1", Away)
	}
	if f.LimitReached("q1") {
		t.Error("flagged at 4 fouls")
	}
	f.AddPlayerFoul("q1", Away)
	if !f.LimitReached("q1") {
		t.Error("not flagged at 5 fouls")
	}

	// flag only; further fouls still count
	if !f.AddPlayerFoul("q1", Away) || f.Player("q1") != 6 {
		t.Errorf("foul after limit not recorded, q1 = %d", f.Player("q1"))
	}
	if f.LimitReached("nobody") {
		t.Error("unknown player flagged")
	}
}

func TestTimeouts(t *testing.T) {
	tests := []struct {
		name      string
		allowance int
		uses      int
		wantLeft  int
		lastOK    bool
	}{
		{"exhausted stays zero", 0, 1, 0, false},
		{"consume two", 3, 2, 1, true},
		{"over use", 2, 5, 0, false},
		{"negative allowance", -1, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to := NewTimeouts(tt.allowance)
			var ok bool
			for i := 0; i < tt.uses; i++ {
				ok = to.Use(Home)
			}
			if ok != tt.lastOK {
				t.Errorf("last Use = %v, want %v", ok, tt.lastOK)
			}
			if got := to.Remaining(Home); got != tt.wantLeft {
				t.Errorf("home left = %d, want %d", got, tt.wantLeft)
			}
			if to.Remaining(Away) != max(tt.allowance, 0) {
				t.Errorf("away touched: %d", to.Remaining(Away))
			}
		})
	}
}
