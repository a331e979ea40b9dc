package ledger

// DefaultFoulLimit is the personal foul count that flags a player.
const DefaultFoulLimit = 5

// Fouls mirrors Score with a fixed step of one foul. It also flags players
// who reach the foul limit; what to do about it is left to the caller.
type Fouls struct {
	t     *Tally
	limit int
}

func NewFouls(members map[string]Team, limit int) *Fouls {
	if limit <= 0 {
		limit = DefaultFoulLimit
	}
	return &Fouls{t: NewTally(members), limit: limit}
}

func (f *Fouls) AddTeamFoul(team Team) bool    { return f.t.AddTeam(team, 1) }
func (f *Fouls) RemoveTeamFoul(team Team) bool { return f.t.RemoveTeam(team, 1) }

func (f *Fouls) AddPlayerFoul(playerID string, team Team) bool {
	return f.t.AddPlayer(playerID, 1, team)
}

func (f *Fouls) RemovePlayerFoul(playerID string, team Team) bool {
	return f.t.RemovePlayer(playerID, 1, team)
}

func (f *Fouls) Team(team Team) int { return f.t.Team(team) }

func (f *Fouls) Player(playerID string) int {
	v, _ := f.t.Player(playerID)
	return v
}

func (f *Fouls) Limit() int { return f.limit }

// LimitReached reports whether the player is at or over the foul limit.
func (f *Fouls) LimitReached(playerID string) bool {
	v, ok := f.t.Player(playerID)
	return ok && v >= f.limit
}
