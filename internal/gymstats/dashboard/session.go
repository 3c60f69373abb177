package dashboard

import (
	"context"
	"sync"
	"time"
)

// SessionStore keeps one Session per credentials key.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for key, creating it on first use.
func (s *SessionStore) Get(key string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		session = &Session{}
		s.sessions[key] = session
	}
	return session
}

// Lookup returns the session for key without creating one.
func (s *SessionStore) Lookup(key string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	return session, ok
}

// Remove cancels any in-flight load of the session and forgets it.
func (s *SessionStore) Remove(key string) bool {
	s.mu.Lock()
	session, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()

	if ok {
		session.Cancel()
	}
	return ok
}

// dropIfEmpty forgets session when it never committed a snapshot and has no
// load in flight. Failed loads of unknown credentials leave nothing behind.
func (s *SessionStore) dropIfEmpty(key string, session *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions[key] != session || !session.empty() {
		return false
	}
	delete(s.sessions, key)
	return true
}

// EvictIdle forgets every session not used since cutoff. Sessions with a
// load in flight are kept.
func (s *SessionStore) EvictIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, session := range s.sessions {
		if session.idleSince(cutoff) {
			delete(s.sessions, key)
			evicted++
		}
	}
	return evicted
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Session holds the dashboard state of one user: the last committed
// snapshot and the load currently in flight, if any. Only the most recent
// load may commit.
type Session struct {
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	snapshot   *Snapshot
	lastUsed   time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastUsed) {
		s.lastUsed = now
	}
}

func (s *Session) empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot == nil && s.cancel == nil
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel == nil && s.lastUsed.Before(cutoff)
}

// begin starts a new load generation and cancels the previous one.
func (s *Session) begin(ctx context.Context) (context.Context, uint64) {
	loadCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	s.cancel = cancel

	return loadCtx, s.generation
}

// commit stores snapshot if generation is still the current one.
func (s *Session) commit(generation uint64, snapshot *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}
	snapshot.Generation = generation
	s.snapshot = snapshot
	return true
}

// finish releases the context of the given generation.
func (s *Session) finish(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation == s.generation && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) current(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generation == s.generation
}

// Cancel cancels the in-flight load, if any, and bumps the generation so it
// cannot commit.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
}

// Snapshot returns the last committed snapshot, or nil.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
