package server

import (
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/google/uuid"
)

// Session is one editor's chord progression. mu serializes access to the advisor.
type Session struct {
	mu       sync.Mutex
	id       string
	advisor  *tonal.ChordAdvisor
	lastUsed time.Time
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// SessionStore keeps chord sessions in memory. Idle sessions are dropped
// lazily whenever the store is accessed.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store; a non-positive ttl keeps sessions forever
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a session with a fresh advisor
func (s *SessionStore) Create(advisor *tonal.ChordAdvisor) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	sess := &Session{
		id:       uuid.NewString(),
		advisor:  advisor,
		lastUsed: s.now(),
	}
	s.sessions[sess.id] = sess
	return sess
}

// Get returns a live session and marks it used
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	sess, ok := s.sessions[id]
	if ok {
		sess.lastUsed = s.now()
	}
	return sess, ok
}

// Delete removes a session, reporting whether it existed
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	return len(s.sessions)
}

func (s *SessionStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
