package roster

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charleschow/courtside/internal/core/ledger"
	"github.com/charleschow/courtside/internal/core/rules"
)

type memKV struct {
	mu    sync.Mutex
	data  map[string][]byte
	loads int
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func seeded(t *testing.T) *Repository {
	t.Helper()
	sports, err := LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	r := NewRepository(newMemKV())
	if _, err := r.Seed(context.Background(), sports); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return r
}

func TestLoadPresets_Default(t *testing.T) {
	sports, err := LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	if len(sports) != 9 {
		t.Fatalf("got %d sports, want 9", len(sports))
	}

	bb := sports[0]
	if bb.ID != "basketball" || len(bb.Teams) != 2 {
		t.Fatalf("first sport = %+v", bb)
	}
	home, away := bb.Teams[0], bb.Teams[1]
	if len(home.Players) != 5 || len(away.Players) != 5 {
		t.Fatalf("home %d players, away %d players, want 5/5", len(home.Players), len(away.Players))
	}
	for _, p := range home.Players {
		if p.Number%2 != 0 {
			t.Errorf("home player %s has odd number %d", p.ID, p.Number)
		}
	}
	for _, p := range away.Players {
		if p.Number%2 == 0 {
			t.Errorf("away player %s has even number %d", p.ID, p.Number)
		}
	}

	cfg := bb.Settings.Resolve()
	if cfg != (rules.MatchConfig{PeriodCount: 4, PeriodSeconds: 600, Timeouts: 3, FoulLimit: 5}) {
		t.Errorf("basketball config = %+v", cfg)
	}
	if bb.Settings.Chronos == nil || bb.Settings.Chronos.Durations != [2]string{"24", "14"} {
		t.Errorf("chronos = %+v", bb.Settings.Chronos)
	}
}

func TestParsePresets_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "sports:\n  - name: X\n"},
		{"pool without teams", "sports:\n  - id: x\n    players:\n      - { id: p1, number: 1 }\n"},
		{"duplicate number", "sports:\n  - id: x\n    teams:\n      - id: a\n        players:\n          - { id: p1, number: 1 }\n          - { id: p2, number: 1 }\n"},
		{"bad yaml", "sports: [\n"},
		{"player on both teams", "sports:\n  - id: x\n    teams:\n      - id: a\n        players:\n          - { id: p1, number: 1 }\n      - id: b\n        players:\n          - { id: p1, number: 2 }\n"},
		{"pool player also on a team", "sports:\n  - id: x\n    teams:\n      - id: a\n      - id: b\n        players:\n          - { id: p2, number: 9 }\n    players:\n      - { id: p2, number: 2 }\n"},
		{"duplicate team", "sports:\n  - id: x\n    teams:\n      - id: a\n      - id: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePresets([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSplitByParity(t *testing.T) {
	home, away := SplitByParity([]Player{{ID: "a", Number: 0}, {ID: "b", Number: 3}, {ID: "c", Number: 8}})
	if len(home) != 2 || home[0].ID != "a" || home[1].ID != "c" {
		t.Errorf("home = %+v", home)
	}
	if len(away) != 1 || away[0].ID != "b" {
		t.Errorf("away = %+v", away)
	}
}

func TestSeed_KeepsExistingRecords(t *testing.T) {
	ctx := context.Background()
	r := seeded(t)

	if _, err := r.PutSettings(ctx, "volley", rules.Settings{PeriodCount: 5}); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}

	sports, _ := LoadPresets("")
	added, err := r.Seed(ctx, sports)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if added != 0 {
		t.Errorf("second Seed added %d, want 0", added)
	}

	v, err := r.Sport(ctx, "volley")
	if err != nil {
		t.Fatalf("Sport: %v", err)
	}
	if v.Settings.PeriodCount != 5 {
		t.Errorf("volley period count = %d, seed overwrote the edit", v.Settings.PeriodCount)
	}
}

func TestSports_Sorted(t *testing.T) {
	r := seeded(t)
	sports, err := r.Sports(context.Background())
	if err != nil {
		t.Fatalf("Sports: %v", err)
	}
	if len(sports) != 9 {
		t.Fatalf("got %d sports", len(sports))
	}
	for i := 1; i < len(sports); i++ {
		if sports[i-1].ID >= sports[i].ID {
			t.Errorf("not sorted: %s before %s", sports[i-1].ID, sports[i].ID)
		}
	}
}

func TestSport_NotFound(t *testing.T) {
	r := seeded(t)
	_, err := r.Sport(context.Background(), "curling")
	if !errors.Is(err, ErrSportNotFound) {
		t.Errorf("err = %v, want ErrSportNotFound", err)
	}
}

func TestSport_ReturnsPrivateCopy(t *testing.T) {
	ctx := context.Background()
	r := seeded(t)

	a, _ := r.Sport(ctx, "basketball")
	a.Teams[0].Players[0].Name = "changed"
	*a.Settings.Timeouts = 99

	b, _ := r.Sport(ctx, "basketball")
	if b.Teams[0].Players[0].Name == "changed" {
		t.Error("player edit leaked into repository")
	}
	if *b.Settings.Timeouts != 3 {
		t.Errorf("timeouts = %d, edit leaked", *b.Settings.Timeouts)
	}
}

func TestPutTeam(t *testing.T) {
	ctx := context.Background()
	r := seeded(t)

	t.Run("replace existing", func(t *testing.T) {
		s, err := r.PutTeam(ctx, "basketball", Team{
			ID: "basketball-home", Name: "Lions",
			Players: []Player{{ID: "bb-04", Name: "Lucas Martin", Number: 4}},
		})
		if err != nil {
			t.Fatalf("PutTeam: %v", err)
		}
		if len(s.Teams) != 2 || s.Teams[0].Name != "Lions" || len(s.Teams[0].Players) != 1 {
			t.Errorf("teams = %+v", s.Teams)
		}
	})

	t.Run("append new", func(t *testing.T) {
		s, err := r.PutTeam(ctx, "basketball", Team{
			ID: "basketball-guests", Name: "Guests",
			Players: []Player{{ID: "g-1", Number: 1}},
		})
		if err != nil {
			t.Fatalf("PutTeam: %v", err)
		}
		if len(s.Teams) != 3 {
			t.Errorf("got %d teams, want 3", len(s.Teams))
		}
	})

	t.Run("player on another team", func(t *testing.T) {
		_, err := r.PutTeam(ctx, "basketball", Team{
			ID:      "basketball-guests",
			Players: []Player{{ID: "bb-05", Number: 5}},
		})
		if !errors.Is(err, ErrInvalidTeam) {
			t.Errorf("err = %v, want ErrInvalidTeam", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := r.PutTeam(ctx, "basketball", Team{Name: " !! "})
		if !errors.Is(err, ErrInvalidTeam) {
			t.Errorf("err = %v, want ErrInvalidTeam", err)
		}
	})

	t.Run("ids from names", func(t *testing.T) {
		s, err := r.PutTeam(ctx, "basketball", Team{
			Name:    "  São   Paulo ",
			Players: []Player{{Name: "José Núñez", Number: 7}, {ID: "keep", Name: "Ana", Number: 8}},
		})
		if err != nil {
			t.Fatalf("PutTeam: %v", err)
		}
		team, ok := s.Team("sao-paulo")
		if !ok {
			t.Fatal("team sao-paulo not stored")
		}
		if team.Name != "São Paulo" {
			t.Errorf("Name = %q, want %q", team.Name, "São Paulo")
		}
		if team.Players[0].ID != "jose-nunez" || team.Players[1].ID != "keep" {
			t.Errorf("player ids = %q, %q", team.Players[0].ID, team.Players[1].ID)
		}
	})

	t.Run("unknown sport", func(t *testing.T) {
		_, err := r.PutTeam(ctx, "curling", Team{ID: "x"})
		if !errors.Is(err, ErrSportNotFound) {
			t.Errorf("err = %v, want ErrSportNotFound", err)
		}
	})
}

func TestMatchup(t *testing.T) {
	ctx := context.Background()
	r := seeded(t)

	if _, err := r.Matchup(ctx, "basketball", "basketball-home", "basketball-home"); !errors.Is(err, ErrSameTeam) {
		t.Errorf("same team err = %v", err)
	}
	if _, err := r.Matchup(ctx, "basketball", "basketball-home", "nope"); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("missing team err = %v", err)
	}
	if _, err := r.Matchup(ctx, "curling", "a", "b"); !errors.Is(err, ErrSportNotFound) {
		t.Errorf("missing sport err = %v", err)
	}

	m, err := r.Matchup(ctx, "basketball", "basketball-home", "basketball-away")
	if err != nil {
		t.Fatalf("Matchup: %v", err)
	}
	members := m.Members()
	if len(members) != 10 || members["bb-04"] != ledger.Home || members["bb-05"] != ledger.Away {
		t.Errorf("members = %v", members)
	}

	// Roster edits after the matchup is taken do not reach it.
	if _, err := r.PutTeam(ctx, "basketball", Team{ID: "basketball-home", Name: "Renamed"}); err != nil {
		t.Fatalf("PutTeam: %v", err)
	}
	if m.Home.Name != "Home" || len(m.Home.Players) != 5 {
		t.Errorf("matchup changed after roster edit: %+v", m.Home)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Lakers", "lakers"},
		{"São Paulo FC", "sao-paulo-fc"},
		{"  Zoë   O'Neil ", "zoe-o-neil"},
		{"#23", "23"},
		{"--", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
