package session

import (
	"log/slog"
	"sync"
	"time"

	salonErrors "github.com/ninhvo/salonmate/internal/errors"
)

// Store is the process-wide session table. Empty at start, no persistence
// across restarts. Structural changes (create/evict) take the table lock;
// a fetched *Session is mutated only under its per-session turn lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	locks    *lockManager
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		locks:    newLockManager(),
	}
}

// GetOrCreate returns the session for id, creating an empty one on first use.
// This is the only implicit-creation path.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id, LastActivity: time.Now()}
		s.sessions[id] = sess
		slog.Debug("Session created", "session_id", id)
	}
	return sess
}

// Get returns an existing session or ErrUnknownSession.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, salonErrors.ErrUnknownSession
	}
	return sess, nil
}

// Append adds a turn to an existing session's history.
func (s *Store) Append(id string, turn Turn) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}

	sess.Turns = append(sess.Turns, turn)
	sess.LastActivity = time.Now()
	return nil
}

// Clear discards history and resets the topic. Idempotent: clearing an
// unknown session succeeds and does not create one.
func (s *Store) Clear(id string) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return
	}

	sess.Turns = nil
	sess.CurrentTopic = ""
	sess.LastActivity = time.Now()
	slog.Info("Session cleared", "session_id", id)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle removes sessions whose last activity is older than maxAge and
// returns how many were dropped. Sessions with a turn in flight are never
// touched: LastActivity is only read while holding the session's turn
// lock, the same lock its writers hold.
func (s *Store) EvictIdle(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	evicted := 0
	for _, id := range ids {
		if !s.locks.tryLock(id) {
			continue
		}

		s.mu.Lock()
		sess, ok := s.sessions[id]
		idle := ok && sess.LastActivity.Before(cutoff)
		if idle {
			delete(s.sessions, id)
			evicted++
		}
		s.mu.Unlock()

		if idle {
			s.locks.release(id)
		} else {
			s.locks.unlock(id)
		}
	}

	if evicted > 0 {
		slog.Info("Evicted idle sessions", "count", evicted, "max_age", maxAge)
	}
	return evicted
}

// Lock serializes turn processing for one session id.
func (s *Store) Lock(id string) {
	s.locks.lock(id)
}

func (s *Store) Unlock(id string) {
	s.locks.unlock(id)
}
