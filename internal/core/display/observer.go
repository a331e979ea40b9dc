package display

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charleschow/courtside/internal/core/scoreboard"
	"github.com/charleschow/courtside/internal/core/session"
	"github.com/charleschow/courtside/internal/events"
)

// DefaultTickThrottle limits how often a running clock alone reprints the board.
const DefaultTickThrottle = 10 * time.Second

// Printer renders session events to a terminal. Every command prints at
// once; clock ticks print at most once per throttle window.
type Printer struct {
	w        io.Writer
	throttle time.Duration
	tracker  *Tracker
	now      func() time.Time

	mu sync.Mutex
}

func NewPrinter(w io.Writer, throttle time.Duration) *Printer {
	return &Printer{
		w:        w,
		throttle: throttle,
		tracker:  NewTracker(),
		now:      time.Now,
	}
}

// Show prints snap for the given event if it is worth printing.
func (p *Printer) Show(eventType events.EventType, snap scoreboard.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	st := p.tracker.Get(snap.SessionID)

	switch eventType {
	case events.EventSessionClosed:
		fmt.Fprintf(p.w, "\n[%s %s]  %s  %s  final %d-%d\n", label(eventType), now.Format("3:04:05.000 PM"),
			snap.Sport, shortID(snap.SessionID), snap.Home.Score, snap.Away.Score)
		p.tracker.Forget(snap.SessionID)
		return
	case events.EventScoreboard:
		if st.LastVersion != 0 && snap.Version <= st.LastVersion {
			return
		}
		// Period and match ends print their own block right before this one.
		if snap.Action == string(events.EventPeriodEnd) || snap.Action == string(events.EventMatchEnd) {
			st.LastVersion = snap.Version
			return
		}
		if snap.Action == "tick" && now.Sub(st.LastPrint) < p.throttle {
			return
		}
	case events.EventMatchEnd:
		if st.Finaled {
			return
		}
		st.Finaled = true
	}

	PrintScoreboard(p.w, snap, eventType, now)
	st.LastPrint = now
	if snap.Version > st.LastVersion {
		st.LastVersion = snap.Version
	}
}

// HandleEvent is an events.Handler.
func (p *Printer) HandleEvent(e events.Event) error {
	snap, ok := e.Payload.(scoreboard.Snapshot)
	if !ok {
		return fmt.Errorf("display: unexpected payload %T for %s", e.Payload, e.Type)
	}
	p.Show(e.Type, snap)
	return nil
}

// SessionObserver feeds a Printer straight from session notifications.
type SessionObserver struct {
	p     *Printer
	types map[events.EventType]bool
}

// Observer returns a session.Observer that prints only the given event
// types, or every type when none are given.
func (p *Printer) Observer(types ...events.EventType) *SessionObserver {
	o := &SessionObserver{p: p}
	if len(types) > 0 {
		o.types = make(map[events.EventType]bool, len(types))
		for _, t := range types {
			o.types[t] = true
		}
	}
	return o
}

func (o *SessionObserver) OnSessionEvent(_ *session.Session, eventType events.EventType, snap scoreboard.Snapshot) {
	if o.types != nil && !o.types[eventType] {
		return
	}
	o.p.Show(eventType, snap)
}
