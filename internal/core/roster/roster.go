package roster

import (
	"errors"
	"fmt"

	"github.com/charleschow/courtside/internal/core/ledger"
	"github.com/charleschow/courtside/internal/core/rules"
)

var (
	ErrSportNotFound = errors.New("sport not found")
	ErrTeamNotFound  = errors.New("team not found")
	ErrSameTeam      = errors.New("home and away must be different teams")
	ErrInvalidTeam   = errors.New("invalid team")
)

type Player struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Number int    `json:"number" yaml:"number"`
}

// Team owns its players by reference. A player belongs to exactly one team
// within a sport.
type Team struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Players []Player `json:"players" yaml:"players"`
}

type Sport struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Icon     string         `json:"icon,omitempty" yaml:"icon,omitempty"`
	Settings rules.Settings `json:"settings" yaml:"settings"`
	Teams    []Team         `json:"teams" yaml:"teams"`
}

// Matchup is the frozen pair of rosters a session is created from. It is a
// deep copy: roster edits made after a match starts never reach the session.
type Matchup struct {
	SportID   string         `json:"sport_id"`
	SportName string         `json:"sport_name"`
	Settings  rules.Settings `json:"settings"`
	Home      Team           `json:"home"`
	Away      Team           `json:"away"`
}

// Members maps every rostered player to their side.
func (m Matchup) Members() map[string]ledger.Team {
	out := make(map[string]ledger.Team, len(m.Home.Players)+len(m.Away.Players))
	for _, p := range m.Home.Players {
		out[p.ID] = ledger.Home
	}
	for _, p := range m.Away.Players {
		out[p.ID] = ledger.Away
	}
	return out
}

func (t Team) Clone() Team {
	out := t
	out.Players = append([]Player(nil), t.Players...)
	return out
}

func (s Sport) Clone() Sport {
	out := s
	out.Teams = make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		out.Teams[i] = t.Clone()
	}
	if s.Settings.Timeouts != nil {
		out.Settings.Timeouts = rules.IntPtr(*s.Settings.Timeouts)
	}
	return out
}

func (s Sport) Team(id string) (Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// Validate checks a team on its own: it needs an id, and player ids and
// jersey numbers must be unique within it.
func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTeam)
	}
	ids := make(map[string]bool, len(t.Players))
	numbers := make(map[int]bool, len(t.Players))
	for _, p := range t.Players {
		if p.ID == "" {
			return fmt.Errorf("%w: player without id in %s", ErrInvalidTeam, t.ID)
		}
		if ids[p.ID] {
			return fmt.Errorf("%w: duplicate player %s in %s", ErrInvalidTeam, p.ID, t.ID)
		}
		if numbers[p.Number] {
			return fmt.Errorf("%w: duplicate number %d in %s", ErrInvalidTeam, p.Number, t.ID)
		}
		ids[p.ID] = true
		numbers[p.Number] = true
	}
	return nil
}

// Validate checks every team and that no team id or player id appears
// twice within the sport.
func (s Sport) Validate() error {
	teams := make(map[string]bool, len(s.Teams))
	owner := make(map[string]string)
	for _, t := range s.Teams {
		if err := t.Validate(); err != nil {
			return err
		}
		if teams[t.ID] {
			return fmt.Errorf("%w: duplicate team %s", ErrInvalidTeam, t.ID)
		}
		teams[t.ID] = true
		for _, p := range t.Players {
			if other, ok := owner[p.ID]; ok {
				return fmt.Errorf("%w: player %s on both %s and %s", ErrInvalidTeam, p.ID, other, t.ID)
			}
			owner[p.ID] = t.ID
		}
	}
	return nil
}

// SplitByParity assigns even jersey numbers to home and odd ones to away.
// It only exists to turn a flat sample player pool into two rosters; real
// rosters carry explicit membership.
func SplitByParity(pool []Player) (home, away []Player) {
	for _, p := range pool {
		if p.Number%2 == 0 {
			home = append(home, p)
		} else {
			away = append(away, p)
		}
	}
	return home, away
}
