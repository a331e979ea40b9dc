package session

import (
	"errors"
	"fmt"

	"github.com/charleschow/courtside/internal/core/ledger"
	"github.com/charleschow/courtside/internal/core/scoreboard"
)

var ErrUnknownOp = errors.New("unknown command")

// Op names a command as it travels over the wire.
type Op string

const (
	OpStart              Op = "start"
	OpPause              Op = "pause"
	OpReset              Op = "reset"
	OpNextPeriod         Op = "next_period"
	OpAddTeamPoints      Op = "add_team_points"
	OpRemoveTeamPoints   Op = "remove_team_points"
	OpAddPlayerPoints    Op = "add_player_points"
	OpRemovePlayerPoints Op = "remove_player_points"
	OpAddTeamFoul        Op = "add_team_foul"
	OpRemoveTeamFoul     Op = "remove_team_foul"
	OpAddPlayerFoul      Op = "add_player_foul"
	OpRemovePlayerFoul   Op = "remove_player_foul"
	OpUseTimeout         Op = "use_timeout"
)

// Command is a user action in wire form. Fields an op does not use are ignored.
type Command struct {
	Op       Op          `json:"op"`
	Team     ledger.Team `json:"team,omitempty"`
	PlayerID string      `json:"player_id,omitempty"`
	Points   int         `json:"points,omitempty"`
}

// Apply dispatches a wire command to the matching method.
func (s *Session) Apply(cmd Command) (scoreboard.Snapshot, error) {
	switch cmd.Op {
	case OpStart:
		return s.Start()
	case OpPause:
		return s.Pause()
	case OpReset:
		return s.Reset()
	case OpNextPeriod:
		return s.NextPeriod()
	case OpAddTeamPoints:
		return s.AddTeamPoints(cmd.Team, cmd.Points)
	case OpRemoveTeamPoints:
		return s.RemoveTeamPoints(cmd.Team, cmd.Points)
	case OpAddPlayerPoints:
		return s.AddPlayerPoints(cmd.PlayerID, cmd.Points, cmd.Team)
	case OpRemovePlayerPoints:
		return s.RemovePlayerPoints(cmd.PlayerID, cmd.Points, cmd.Team)
	case OpAddTeamFoul:
		return s.AddTeamFoul(cmd.Team)
	case OpRemoveTeamFoul:
		return s.RemoveTeamFoul(cmd.Team)
	case OpAddPlayerFoul:
		return s.AddPlayerFoul(cmd.PlayerID, cmd.Team)
	case OpRemovePlayerFoul:
		return s.RemovePlayerFoul(cmd.PlayerID, cmd.Team)
	case OpUseTimeout:
		return s.UseTimeout(cmd.Team)
	default:
		return scoreboard.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
	}
}

// Start runs the clock from Idle or Paused and arms the tick schedule.
func (s *Session) Start() (scoreboard.Snapshot, error) {
	return s.do(string(OpStart), func() bool {
		if !s.clock.Start() {
			return false
		}
		s.armTicks()
		return true
	})
}

func (s *Session) Pause() (scoreboard.Snapshot, error) {
	return s.do(string(OpPause), func() bool {
		if !s.clock.Pause() {
			return false
		}
		s.disarmTicks()
		return true
	})
}

// Reset reloads the current period and stops the clock. Score, fouls and
// timeouts are untouched.
func (s *Session) Reset() (scoreboard.Snapshot, error) {
	return s.do(string(OpReset), func() bool {
		if !s.clock.Reset() {
			return false
		}
		s.disarmTicks()
		return true
	})
}

// NextPeriod skips to the next period without waiting for the clock.
func (s *Session) NextPeriod() (scoreboard.Snapshot, error) {
	return s.do(string(OpNextPeriod), func() bool {
		if !s.clock.NextPeriod() {
			return false
		}
		s.disarmTicks()
		return true
	})
}

func (s *Session) AddTeamPoints(team ledger.Team, points int) (scoreboard.Snapshot, error) {
	return s.do(string(OpAddTeamPoints), func() bool { return s.score.AddTeamPoints(team, points) })
}

func (s *Session) RemoveTeamPoints(team ledger.Team, points int) (scoreboard.Snapshot, error) {
	return s.do(string(OpRemoveTeamPoints), func() bool { return s.score.RemoveTeamPoints(team, points) })
}

func (s *Session) AddPlayerPoints(playerID string, points int, team ledger.Team) (scoreboard.Snapshot, error) {
	return s.do(string(OpAddPlayerPoints), func() bool { return s.score.AddPlayerPoints(playerID, points, team) })
}

func (s *Session) RemovePlayerPoints(playerID string, points int, team ledger.Team) (scoreboard.Snapshot, error) {
	return s.do(string(OpRemovePlayerPoints), func() bool { return s.score.RemovePlayerPoints(playerID, points, team) })
}

func (s *Session) AddTeamFoul(team ledger.Team) (scoreboard.Snapshot, error) {
	return s.do(string(OpAddTeamFoul), func() bool { return s.fouls.AddTeamFoul(team) })
}

func (s *Session) RemoveTeamFoul(team ledger.Team) (scoreboard.Snapshot, error) {
	return s.do(string(OpRemoveTeamFoul), func() bool { return s.fouls.RemoveTeamFoul(team) })
}

func (s *Session) AddPlayerFoul(playerID string, team ledger.Team) (scoreboard.Snapshot, error) {
	return s.do(string(OpAddPlayerFoul), func() bool { return s.fouls.AddPlayerFoul(playerID, team) })
}

func (s *Session) RemovePlayerFoul(playerID string, team ledger.Team) (scoreboard.Snapshot, error) {
	return s.do(string(OpRemovePlayerFoul), func() bool { return s.fouls.RemovePlayerFoul(playerID, team) })
}

func (s *Session) UseTimeout(team ledger.Team) (scoreboard.Snapshot, error) {
	return s.do(string(OpUseTimeout), func() bool { return s.timeouts.Use(team) })
}
