package ledger

// Timeouts counts the timeouts each team has left. They are only ever
// consumed; running out is a normal end state, not a failure.
type Timeouts struct {
	allowance int
	left      map[Team]int
}

func NewTimeouts(allowance int) *Timeouts {
	if allowance < 0 {
		allowance = 0
	}
	return &Timeouts{
		allowance: allowance,
		left:      map[Team]int{Home: allowance, Away: allowance},
	}
}

// Use consumes one timeout if the team has any left.
func (t *Timeouts) Use(team Team) bool {
	if !team.Valid() || t.left[team] <= 0 {
		return false
	}
	t.left[team]--
	return true
}

func (t *Timeouts) Remaining(team Team) int { return t.left[team] }
func (t *Timeouts) Allowance() int          { return t.allowance }
