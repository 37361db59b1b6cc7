package state

import (
	"context"
	"sync"
)

// lockEntry is a one-slot semaphore plus the number of goroutines holding or
// waiting on it.
type lockEntry struct {
	slot chan struct{}
	refs int
}

// TurnLocks serializes turns per session. Sessions never contend with each
// other; entries are reference counted and dropped once nobody holds or waits
// on them, so the map only ever contains sessions with a turn in flight.
type TurnLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func NewTurnLocks() *TurnLocks {
	return &TurnLocks{locks: make(map[string]*lockEntry)}
}

func (l *TurnLocks) acquire(sessionID string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &lockEntry{slot: make(chan struct{}, 1)}
		l.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (l *TurnLocks) release(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[sessionID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, sessionID)
	}
}

// WithLock runs fn while holding the turn lock of sessionID. Waiting for the
// lock is abandoned when ctx is done.
func (l *TurnLocks) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := l.acquire(sessionID)
	defer l.release(sessionID)

	select {
	case entry.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-entry.slot }()

	return fn(ctx)
}

// Active reports how many sessions currently have a lock entry.
func (l *TurnLocks) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
