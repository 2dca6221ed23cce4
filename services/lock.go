package services

import "sync"

// txLocks hands out one mutex per transaction id so that status
// reconciliation, webhook application and refunds for the same transaction
// never interleave. Entries are reference-counted and removed when the last
// holder releases, so the map does not grow with transaction volume.
type txLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newTxLocks() *txLocks {
	return &txLocks{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for the given transaction id.
func (l *txLocks) Lock(id string) {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for the given transaction id.
func (l *txLocks) Unlock(id string) {
	l.mu.Lock()
	e, ok := l.locks[id]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
	}
	l.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
