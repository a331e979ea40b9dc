package clock

// State is the clock's position in the period state machine.
type State string

const (
	StateIdle          State = "idle"
	StateRunning       State = "running"
	StatePaused        State = "paused"
	StatePeriodExpired State = "period_expired"
	StateMatchExpired  State = "match_expired"
)

// TickResult tells the caller what a single tick did.
type TickResult int

const (
	TickIgnored TickResult = iota
	TickDecrement
	TickPeriodEnd
	TickMatchEnd
)

func (r TickResult) String() string {
	switch r {
	case TickDecrement:
		return "decrement"
	case TickPeriodEnd:
		return "period_end"
	case TickMatchEnd:
		return "match_end"
	default:
		return "ignored"
	}
}

// Clock is the countdown for one match. It is a plain state machine:
// it never schedules anything itself and is not safe for concurrent use.
// The owning session drives Tick from its scheduler and serializes all calls.
type Clock struct {
	periodCount   int
	periodSeconds int

	state     State
	period    int
	remaining int
}

// New returns an idle clock on period 1 with the full period loaded.
// Non-positive arguments are clamped to 1 so the state machine stays total.
func New(periodCount, periodSeconds int) *Clock {
	if periodCount < 1 {
		periodCount = 1
	}
	if periodSeconds < 1 {
		periodSeconds = 1
	}
	return &Clock{
		periodCount:   periodCount,
		periodSeconds: periodSeconds,
		state:         StateIdle,
		period:        1,
		remaining:     periodSeconds,
	}
}

func (c *Clock) State() State        { return c.state }
func (c *Clock) Period() int         { return c.period }
func (c *Clock) PeriodCount() int    { return c.periodCount }
func (c *Clock) PeriodSeconds() int  { return c.periodSeconds }
func (c *Clock) Remaining() int      { return c.remaining }
func (c *Clock) Running() bool       { return c.state == StateRunning }
func (c *Clock) Finished() bool      { return c.state == StateMatchExpired }
func (c *Clock) IsFinalPeriod() bool { return c.period >= c.periodCount }

// Start moves Idle or Paused to Running. Returns false when already
// running or when the match is over.
func (c *Clock) Start() bool {
	switch c.state {
	case StateIdle, StatePaused:
		c.state = StateRunning
		return true
	default:
		return false
	}
}

// Pause stops a running clock, preserving the remaining time exactly.
func (c *Clock) Pause() bool {
	if c.state != StateRunning {
		return false
	}
	c.state = StatePaused
	return true
}

// Reset reloads the current period's full duration and parks the clock in
// Idle. Period number is untouched. A finished match cannot be reset.
func (c *Clock) Reset() bool {
	if c.state == StateMatchExpired {
		return false
	}
	if c.state == StateIdle && c.remaining == c.periodSeconds {
		return false
	}
	c.state = StateIdle
	c.remaining = c.periodSeconds
	return true
}

// NextPeriod manually advances to the next period, loading it idle.
// It never goes past the configured period count.
func (c *Clock) NextPeriod() bool {
	if c.state == StateMatchExpired || c.IsFinalPeriod() {
		return false
	}
	c.loadNextPeriod()
	return true
}

// Tick applies one elapsed second. Only a running clock moves.
func (c *Clock) Tick() TickResult {
	if c.state != StateRunning {
		return TickIgnored
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining > 0 {
		return TickDecrement
	}

	if !c.IsFinalPeriod() {
		c.state = StatePeriodExpired
		c.loadNextPeriod()
		return TickPeriodEnd
	}

	c.state = StateMatchExpired
	c.remaining = 0
	return TickMatchEnd
}

func (c *Clock) loadNextPeriod() {
	c.period++
	c.remaining = c.periodSeconds
	c.state = StateIdle
}
