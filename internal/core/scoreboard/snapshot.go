package scoreboard

import (
	"time"

	"github.com/charleschow/courtside/internal/core/clock"
	"github.com/charleschow/courtside/internal/core/ledger"
)

// Snapshot is the complete observable state of one match session. It is a
// value: renderers may keep it as long as they like.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Sport     string    `json:"sport"`
	Version   uint64    `json:"version"`
	Action    string    `json:"action,omitempty"`
	Clock     Clock     `json:"clock"`
	Home      TeamLine  `json:"home"`
	Away      TeamLine  `json:"away"`
	FoulLimit int       `json:"foul_limit"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Clock struct {
	State         clock.State `json:"state"`
	Period        int         `json:"period"`
	PeriodCount   int         `json:"period_count"`
	Remaining     int         `json:"remaining"`
	PeriodSeconds int         `json:"period_seconds"`
	Display       string      `json:"display"`
	Running       bool        `json:"running"`
}

type TeamLine struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Score             int          `json:"score"`
	Fouls             int          `json:"fouls"`
	TimeoutsRemaining int          `json:"timeouts_remaining"`
	TimeoutAllowance  int          `json:"timeout_allowance"`
	Players           []PlayerLine `json:"players"`
}

type PlayerLine struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Number           int    `json:"number"`
	Points           int    `json:"points"`
	Fouls            int    `json:"fouls"`
	FoulLimitReached bool   `json:"foul_limit_reached,omitempty"`
}

// Team returns the line for one side.
func (s Snapshot) Team(t ledger.Team) TeamLine {
	if t == ledger.Away {
		return s.Away
	}
	return s.Home
}

// Leader returns the side in front, or "" on a tie.
func (s Snapshot) Leader() ledger.Team {
	switch {
	case s.Home.Score > s.Away.Score:
		return ledger.Home
	case s.Away.Score > s.Home.Score:
		return ledger.Away
	default:
		return ""
	}
}

// Player finds a player on either side.
func (s Snapshot) Player(id string) (PlayerLine, ledger.Team, bool) {
	for _, p := range s.Home.Players {
		if p.ID == id {
			return p, ledger.Home, true
		}
	}
	for _, p := range s.Away.Players {
		if p.ID == id {
			return p, ledger.Away, true
		}
	}
	return PlayerLine{}, "", false
}
