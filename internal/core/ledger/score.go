package ledger

// Score is the points ledger for a match.
type Score struct {
	t *Tally
}

func NewScore(members map[string]Team) *Score {
	return &Score{t: NewTally(members)}
}

func (s *Score) AddTeamPoints(team Team, points int) bool    { return s.t.AddTeam(team, points) }
func (s *Score) RemoveTeamPoints(team Team, points int) bool { return s.t.RemoveTeam(team, points) }

func (s *Score) AddPlayerPoints(playerID string, points int, team Team) bool {
	return s.t.AddPlayer(playerID, points, team)
}

func (s *Score) RemovePlayerPoints(playerID string, points int, team Team) bool {
	return s.t.RemovePlayer(playerID, points, team)
}

func (s *Score) Team(team Team) int { return s.t.Team(team) }

func (s *Score) Player(playerID string) int {
	v, _ := s.t.Player(playerID)
	return v
}

// Attributed is the part of a team's score credited to individual players.
func (s *Score) Attributed(team Team) int { return s.t.PlayerSum(team) }
