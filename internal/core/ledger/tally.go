package ledger

// Team identifies one side of a match.
type Team string

const (
	Home Team = "home"
	Away Team = "away"
)

func (t Team) Valid() bool { return t == Home || t == Away }

// Other returns the opposing side.
func (t Team) Other() Team {
	if t == Home {
		return Away
	}
	return Home
}

// Tally tracks one kind of counter at team and player granularity.
//
// Team membership is explicit: every rostered player is bound to exactly one
// team when the tally is created. Player-attributed changes always move the
// player counter and the team counter together, so the team value is never
// below the sum of its players' values.
//
// Tally is not safe for concurrent use. The owning session serializes access.
type Tally struct {
	team   map[Team]int
	player map[string]int
	owner  map[string]Team
}

// NewTally seeds a zero counter for every player in members.
func NewTally(members map[string]Team) *Tally {
	t := &Tally{
		team:   map[Team]int{Home: 0, Away: 0},
		player: make(map[string]int, len(members)),
		owner:  make(map[string]Team, len(members)),
	}
	for id, team := range members {
		if !team.Valid() {
			continue
		}
		t.player[id] = 0
		t.owner[id] = team
	}
	return t
}

// AddTeam adds n to a team without attributing it to a player.
func (t *Tally) AddTeam(team Team, n int) bool {
	if !team.Valid() || n <= 0 {
		return false
	}
	t.team[team] += n
	return true
}

// RemoveTeam subtracts n from a team, clamping at the portion of the team
// value that is attributed to players (zero when nobody is attributed).
func (t *Tally) RemoveTeam(team Team, n int) bool {
	if !team.Valid() || n <= 0 {
		return false
	}
	floor := t.PlayerSum(team)
	next := max(t.team[team]-n, floor)
	if next == t.team[team] {
		return false
	}
	t.team[team] = next
	return true
}

// AddPlayer adds n to a rostered player and to that player's team.
func (t *Tally) AddPlayer(id string, n int, team Team) bool {
	if n <= 0 || !t.belongs(id, team) {
		return false
	}
	t.player[id] += n
	t.team[team] += n
	return true
}

// RemovePlayer subtracts n from a player and the team. The request is
// rejected outright if the player holds less than n.
func (t *Tally) RemovePlayer(id string, n int, team Team) bool {
	if n <= 0 || !t.belongs(id, team) {
		return false
	}
	if t.player[id] < n {
		return false
	}
	t.player[id] -= n
	t.team[team] = max(t.team[team]-n, 0)
	return true
}

func (t *Tally) Team(team Team) int { return t.team[team] }

// Player returns the player's value and whether the player is rostered.
func (t *Tally) Player(id string) (int, bool) {
	v, ok := t.player[id]
	return v, ok
}

// PlayerSum is the total attributed to the given team's players.
func (t *Tally) PlayerSum(team Team) int {
	sum := 0
	for id, v := range t.player {
		if t.owner[id] == team {
			sum += v
		}
	}
	return sum
}

func (t *Tally) belongs(id string, team Team) bool {
	owner, ok := t.owner[id]
	return ok && owner == team
}
