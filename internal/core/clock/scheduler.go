package clock

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned cancel func is called.
// Cancel must be idempotent and must not block on fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// WallScheduler fires on real time. Deadlines are computed from the schedule's
// start (start + n*interval) so a slow callback does not push later ticks back.
type WallScheduler struct{}

func (WallScheduler) Every(interval time.Duration, fn func()) func() {
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		start := time.Now()
		n := 1
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-stop:
				return
			case <-timer.C:
			}

			select {
			case <-stop:
				return
			default:
			}
			fn()

			n++
			wait := time.Until(start.Add(time.Duration(n) * interval))
			if wait < 0 {
				wait = 0
			}
			timer.Reset(wait)
		}
	}()

	return func() { once.Do(func() { close(stop) }) }
}

// ManualScheduler is driven by Advance instead of time. Used by tests and
// by anything that wants to replay a match deterministically.
type ManualScheduler struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{jobs: make(map[int]func())}
}

func (m *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.jobs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.jobs, id)
		m.mu.Unlock()
	}
}

// Advance fires every live schedule n times. The lock is released while
// callbacks run so they may cancel schedules themselves.
func (m *ManualScheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		fns := make([]func(), 0, len(m.jobs))
		for _, fn := range m.jobs {
			fns = append(fns, fn)
		}
		m.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}

// Active reports how many schedules have not been cancelled.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
