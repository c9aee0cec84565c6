package server

import "sync"

// accountLock hands out one mutex per account ID. Entries are reference
// counted and removed when the last holder releases, so the map does not
// grow with the account table.
type accountLock struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newAccountLock() *accountLock {
	return &accountLock{entries: make(map[int64]*lockEntry)}
}

func (l *accountLock) lock(accountID int64) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[accountID]
	if !ok {
		e = &lockEntry{}
		l.entries[accountID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, accountID)
		}
		l.mu.Unlock()
	}
}
