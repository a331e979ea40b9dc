package store

import (
	"sort"
	"sync"

	"github.com/charleschow/courtside/internal/core/session"
)

// SessionStore is a thread-safe map of all live sessions keyed by id.
//
// The store's RWMutex protects the map itself (lookups, inserts, deletes).
// It does NOT protect session contents; each Session serializes its own
// state through its inbox.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.Session),
	}
}

func (s *SessionStore) Get(id string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *SessionStore) Put(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
}

// Delete removes a session and shuts down its goroutine. Its state is gone
// for good.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.Close()
	}
	return ok
}

// All returns the live sessions, oldest first. Safe for iteration.
func (s *SessionStore) All() []*session.Session {
	s.mu.RLock()
	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out
}

// BySport returns the live sessions for one sport.
func (s *SessionStore) BySport(sport string) []*session.Session {
	var out []*session.Session
	for _, sess := range s.All() {
		if sess.Sport() == sport {
			out = append(out, sess)
		}
	}
	return out
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll tears down every session. Used on shutdown.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*session.Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Close()
	}
}
