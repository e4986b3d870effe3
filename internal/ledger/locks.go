package ledger

import "sync"

// lockArena hands out one mutex per portfolio ID. Entries are reference
// counted and dropped once no goroutine holds or waits on them, so the
// arena only grows with the number of portfolios in flight.
type lockArena struct {
	mu    sync.Mutex
	locks map[string]*portfolioLock
}

type portfolioLock struct {
	mu   sync.Mutex
	refs int
}

func newLockArena() *lockArena {
	return &lockArena{
		locks: make(map[string]*portfolioLock),
	}
}

// Lock blocks until the caller holds the lock for id and returns the
// function that releases it.
func (a *lockArena) Lock(id string) (unlock func()) {
	a.mu.Lock()
	l, ok := a.locks[id]
	if !ok {
		l = &portfolioLock{}
		a.locks[id] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		a.mu.Lock()
		defer a.mu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, id)
		}
	}
}

// size returns the number of live entries.
func (a *lockArena) size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}
