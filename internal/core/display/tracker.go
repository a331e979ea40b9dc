package display

import (
	"sync"
	"time"
)

// State holds per-session display flags.
type State struct {
	LastPrint   time.Time
	LastVersion uint64
	Finaled     bool
}

// Tracker maps session ids to their display state. The map is
// mutex-protected; a *State is only touched while Printer holds its lock.
type Tracker struct {
	mu     sync.Mutex
	states map[string]*State
}

func NewTracker() *Tracker {
	return &Tracker{
		states: make(map[string]*State),
	}
}

// Get returns the display state for a session, creating one if it
// does not yet exist.
func (t *Tracker) Get(sessionID string) *State {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[sessionID]
	if !ok {
		s = &State{}
		t.states[sessionID] = s
	}
	return s
}

func (t *Tracker) Forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, sessionID)
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states)
}
