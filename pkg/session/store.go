package session

import (
	"sync"
	"time"
)

type entry struct {
	history  *History
	busy     bool
	lastSeen time.Time
}

// Store keeps one History per session id and allows a single query in
// flight per session.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

func (s *Store) lookup(id string) *entry {
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{history: NewHistory()}
		s.sessions[id] = e
	}
	e.lastSeen = s.now()
	return e
}

// Get returns the history for id, creating it when absent.
func (s *Store) Get(id string) *History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id).history
}

// Acquire marks id as busy. It reports false when a query is already
// running for that session.
func (s *Store) Acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(id)
	if e.busy {
		return false
	}
	e.busy = true
	return true
}

func (s *Store) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[id]; ok {
		e.busy = false
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops idle sessions not seen for longer than ttl and returns how
// many were removed.
func (s *Store) Prune(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-ttl)
	removed := 0
	for id, e := range s.sessions {
		if !e.busy && e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
