package sessionlock

import "sync"

// Keyed serializes mutations per session id. Entries are reference
// counted so the map does not grow with every session ever touched.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Lock blocks until the session lock is held and returns the unlock func.
func (k *Keyed) Lock(sessionID string) func() {
	k.mu.Lock()
	e, ok := k.locks[sessionID]
	if !ok {
		e = &entry{}
		k.locks[sessionID] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, sessionID)
		}
		k.mu.Unlock()
	}
}
