package session

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/charleschow/courtside/internal/core/clock"
	"github.com/charleschow/courtside/internal/core/ledger"
	"github.com/charleschow/courtside/internal/core/roster"
	"github.com/charleschow/courtside/internal/core/rules"
	"github.com/charleschow/courtside/internal/core/scoreboard"
	"github.com/charleschow/courtside/internal/events"
	"github.com/charleschow/courtside/internal/telemetry"
)

// ErrClosed is returned by every call made after Close.
var ErrClosed = errors.New("session closed")

const inboxSize = 256

// Observer receives every notification a session emits.
// Implementations run on the session's goroutine and must not call back
// into the session; hand work to another goroutine if needed.
type Observer interface {
	OnSessionEvent(s *Session, eventType events.EventType, snap scoreboard.Snapshot)
}

type Options struct {
	// Scheduler drives the one-second tick. WallScheduler when nil.
	Scheduler clock.Scheduler
	Bus       *events.Bus
	Observers []Observer
}

// Session is the single source of truth for one live match.
//
// All state is owned by one goroutine that drains an inbox of closures.
// Commands, ticks and reads are all closures on that inbox, so a composite
// update (player + team) is never observed half done and no field needs a
// lock.
type Session struct {
	id        string
	matchup   roster.Matchup
	cfg       rules.MatchConfig
	createdAt time.Time

	clock    *clock.Clock
	score    *ledger.Score
	fouls    *ledger.Fouls
	timeouts *ledger.Timeouts

	version   uint64
	action    string
	updatedAt time.Time

	sched       clock.Scheduler
	cancelTicks func()
	tickGen     uint64

	bus       *events.Bus
	observers []Observer

	closed    bool
	inbox     chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New builds the ledgers from the frozen matchup and starts the session
// goroutine. An empty id gets a generated one.
func New(id string, m roster.Matchup, cfg rules.MatchConfig, opts Options) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clock.WallScheduler{}
	}

	members := m.Members()
	now := time.Now()
	s := &Session{
		id:        id,
		matchup:   m,
		cfg:       cfg,
		createdAt: now,
		clock:     clock.New(cfg.PeriodCount, cfg.PeriodSeconds),
		score:     ledger.NewScore(members),
		fouls:     ledger.NewFouls(members, cfg.FoulLimit),
		timeouts:  ledger.NewTimeouts(cfg.Timeouts),
		updatedAt: now,
		sched:     opts.Scheduler,
		bus:       opts.Bus,
		observers: append([]Observer(nil), opts.Observers...),
		inbox:     make(chan func(), inboxSize),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	telemetry.Metrics.ActiveSessions.Inc()
	telemetry.Infof("session %s: %s %s vs %s  periods=%d x %s  timeouts=%d",
		shortID(id), m.SportName, m.Home.Name, m.Away.Name,
		cfg.PeriodCount, clock.FormatDuration(cfg.PeriodSeconds), cfg.Timeouts)

	go s.run()
	return s
}

func (s *Session) ID() string                { return s.id }
func (s *Session) Sport() string             { return s.matchup.SportID }
func (s *Session) Matchup() roster.Matchup   { return s.matchup }
func (s *Session) Config() rules.MatchConfig { return s.cfg }
func (s *Session) CreatedAt() time.Time      { return s.createdAt }

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case fn := <-s.inbox:
			fn()
		case <-s.quit:
			return
		}
	}
}

// send queues fn on the session goroutine. It blocks while the inbox is
// full; ticks and commands are never dropped.
func (s *Session) send(fn func()) error {
	select {
	case <-s.quit:
		return ErrClosed
	default:
	}
	select {
	case s.inbox <- fn:
		return nil
	case <-s.quit:
		return ErrClosed
	}
}

type result struct {
	snap    scoreboard.Snapshot
	applied bool
	err     error
}

// call runs fn on the session goroutine and waits for its result.
func (s *Session) call(fn func() result) result {
	ch := make(chan result, 1)
	err := s.send(func() {
		if s.closed {
			ch <- result{err: ErrClosed}
			return
		}
		ch <- fn()
	})
	if err != nil {
		return result{err: err}
	}
	select {
	case r := <-ch:
		return r
	case <-s.done:
		select {
		case r := <-ch:
			return r
		default:
			return result{err: ErrClosed}
		}
	}
}

// do applies one command. fn reports whether state changed; only then is
// the version bumped and a scoreboard event published.
func (s *Session) do(action string, fn func() bool) (scoreboard.Snapshot, error) {
	start := time.Now()
	r := s.call(func() result {
		applied := fn()
		if applied {
			s.touch(action)
			s.publish(events.EventScoreboard)
		}
		return result{snap: s.snapshot(), applied: applied}
	})
	if r.err != nil {
		return scoreboard.Snapshot{}, r.err
	}
	telemetry.Metrics.Commands.WithLabelValues(action, strconv.FormatBool(r.applied)).Inc()
	telemetry.Metrics.CommandLatency.Observe(time.Since(start).Seconds())
	return r.snap, nil
}

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot() (scoreboard.Snapshot, error) {
	r := s.call(func() result { return result{snap: s.snapshot()} })
	return r.snap, r.err
}

// InProgress reports whether the clock is running. A closed session is
// never in progress.
func (s *Session) InProgress() bool {
	r := s.call(func() result { return result{applied: s.clock.Running()} })
	return r.err == nil && r.applied
}

// Close cancels the tick schedule, publishes session_closed and stops the
// goroutine. Safe to call more than once, but not from an Observer or a
// bus handler.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		ack := make(chan struct{})
		if err := s.send(func() {
			s.disarmTicks()
			s.closed = true
			s.touch("close")
			s.publish(events.EventSessionClosed)
			close(ack)
		}); err == nil {
			<-ack
		}
		close(s.quit)
		<-s.done
		telemetry.Metrics.ActiveSessions.Dec()
		telemetry.Infof("session %s: closed", shortID(s.id))
	})
}

// armTicks starts a fresh one-second schedule. Ticks carry the generation
// they were armed with; any tick from an older generation is dropped when it
// reaches the inbox, so nothing queued before a pause is replayed after it.
func (s *Session) armTicks() {
	s.disarmTicks()
	gen := s.tickGen
	s.cancelTicks = s.sched.Every(time.Second, func() {
		_ = s.send(func() {
			if s.closed || gen != s.tickGen {
				return
			}
			s.onTick()
		})
	})
}

func (s *Session) disarmTicks() {
	s.tickGen++
	if s.cancelTicks != nil {
		s.cancelTicks()
		s.cancelTicks = nil
	}
}

func (s *Session) onTick() {
	switch s.clock.Tick() {
	case clock.TickIgnored:
		return
	case clock.TickDecrement:
		telemetry.Metrics.Ticks.Inc()
		s.touch("tick")
		s.publish(events.EventScoreboard)
	case clock.TickPeriodEnd:
		telemetry.Metrics.Ticks.Inc()
		telemetry.Metrics.PeriodEnds.Inc()
		s.disarmTicks()
		s.touch(string(events.EventPeriodEnd))
		telemetry.Infof("session %s: period %d of %d over", shortID(s.id), s.clock.Period()-1, s.clock.PeriodCount())
		s.publish(events.EventPeriodEnd)
		s.publish(events.EventScoreboard)
	case clock.TickMatchEnd:
		telemetry.Metrics.Ticks.Inc()
		telemetry.Metrics.MatchEnds.Inc()
		s.disarmTicks()
		s.touch(string(events.EventMatchEnd))
		telemetry.Infof("session %s: match over  %s %d - %d %s", shortID(s.id),
			s.matchup.Home.Name, s.score.Team(ledger.Home), s.score.Team(ledger.Away), s.matchup.Away.Name)
		s.publish(events.EventMatchEnd)
		s.publish(events.EventScoreboard)
	}
}

func (s *Session) touch(action string) {
	s.version++
	s.action = action
	s.updatedAt = time.Now()
}

// publish notifies observers, then the bus.
// Must be called from the session goroutine.
func (s *Session) publish(t events.EventType) {
	snap := s.snapshot()
	for _, o := range s.observers {
		o.OnSessionEvent(s, t, snap)
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{
			ID:        uuid.NewString(),
			Type:      t,
			Sport:     s.matchup.SportID,
			SessionID: s.id,
			Timestamp: s.updatedAt,
			Payload:   snap,
		})
	}
}

func (s *Session) snapshot() scoreboard.Snapshot {
	return scoreboard.Snapshot{
		SessionID: s.id,
		Sport:     s.matchup.SportID,
		Version:   s.version,
		Action:    s.action,
		Clock: scoreboard.Clock{
			State:         s.clock.State(),
			Period:        s.clock.Period(),
			PeriodCount:   s.clock.PeriodCount(),
			Remaining:     s.clock.Remaining(),
			PeriodSeconds: s.clock.PeriodSeconds(),
			Display:       clock.FormatDuration(s.clock.Remaining()),
			Running:       s.clock.Running(),
		},
		Home:      s.teamLine(ledger.Home, s.matchup.Home),
		Away:      s.teamLine(ledger.Away, s.matchup.Away),
		FoulLimit: s.fouls.Limit(),
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) teamLine(side ledger.Team, t roster.Team) scoreboard.TeamLine {
	players := make([]scoreboard.PlayerLine, 0, len(t.Players))
	for _, p := range t.Players {
		players = append(players, scoreboard.PlayerLine{
			ID:               p.ID,
			Name:             p.Name,
			Number:           p.Number,
			Points:           s.score.Player(p.ID),
			Fouls:            s.fouls.Player(p.ID),
			FoulLimitReached: s.fouls.LimitReached(p.ID),
		})
	}
	return scoreboard.TeamLine{
		ID:                t.ID,
		Name:              t.Name,
		Score:             s.score.Team(side),
		Fouls:             s.fouls.Team(side),
		TimeoutsRemaining: s.timeouts.Remaining(side),
		TimeoutAllowance:  s.timeouts.Allowance(),
		Players:           players,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
