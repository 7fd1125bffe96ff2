package state

import "sync"

// Locks hands out one advisory mutex per session id. Turns for the same
// session serialize their load-merge-persist sequence through it; turns for
// different sessions never contend.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the session's lock is held and returns the release
// func. Lock entries are never reaped; the session population of a single
// process is small enough that this is not a concern.
func (l *Locks) Acquire(sessionID string) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
