package events

import "time"

// Event is the envelope that flows through the event bus.
// Every session notification (scoreboard update, period end, match end,
// teardown) is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	Sport     string
	SessionID string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// EventScoreboard follows every state change of a session.
	EventScoreboard EventType = "scoreboard"
	// EventPeriodEnd fires when a non-final period runs out.
	EventPeriodEnd EventType = "period_end"
	// EventMatchEnd fires when the final period runs out.
	EventMatchEnd EventType = "match_end"
	// EventSessionClosed fires once when a session is torn down.
	EventSessionClosed EventType = "session_closed"
)

// SessionTypes lists every event a session publishes, in no particular order.
var SessionTypes = []EventType{EventScoreboard, EventPeriodEnd, EventMatchEnd, EventSessionClosed}
