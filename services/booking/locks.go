package booking

import "sync"

// subCalendarLocks serializes booking commits per sub-calendar. The unique
// index on (subCalendarIds, start) is the hard guarantee; the lock keeps the
// common case free of duplicate-key churn.
type subCalendarLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSubCalendarLocks() *subCalendarLocks {
	return &subCalendarLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the sub-calendar and returns the release func.
func (l *subCalendarLocks) acquire(subCalendarID string) func() {
	l.mu.Lock()
	m, ok := l.locks[subCalendarID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[subCalendarID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
