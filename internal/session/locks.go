package session

import "sync"

// lockManager serializes per-session processing: one logical turn per
// session runs to completion before the next begins.
type lockManager struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

func newLockManager() *lockManager {
	return &lockManager{
		locks: make(map[string]*sync.Mutex),
	}
}

func (m *lockManager) get(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[sessionID] = l
	}
	return l
}

func (m *lockManager) current(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[sessionID]
}

// lock blocks until the caller owns the session. A mutex can be retired
// by release while a waiter is blocked on it, so ownership is re-checked
// against the table after acquisition.
func (m *lockManager) lock(sessionID string) {
	for {
		l := m.get(sessionID)
		l.Lock()
		if m.current(sessionID) == l {
			return
		}
		l.Unlock()
	}
}

// tryLock acquires the session without blocking. False means a turn is
// in flight.
func (m *lockManager) tryLock(sessionID string) bool {
	l := m.get(sessionID)
	if !l.TryLock() {
		return false
	}
	if m.current(sessionID) != l {
		l.Unlock()
		return false
	}
	return true
}

func (m *lockManager) unlock(sessionID string) {
	if l := m.current(sessionID); l != nil {
		l.Unlock()
	}
}

// release retires the session's mutex from the table and unlocks it in
// one step. Only the current holder may call it; waiters blocked on the
// retired mutex fall back to lock's re-check and mint a fresh one.
func (m *lockManager) release(sessionID string) {
	m.mu.Lock()
	l := m.locks[sessionID]
	delete(m.locks, sessionID)
	m.mu.Unlock()

	if l != nil {
		l.Unlock()
	}
}
