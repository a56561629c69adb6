package storage

import "sync"

// ownerLocks hands out one mutex per key. Entries are never evicted; the
// key space is bounded by the number of owners with logs.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key and returns its release func.
func (o *ownerLocks) lock(key string) func() {
	o.mu.Lock()
	m, ok := o.locks[key]
	if !ok {
		m = &sync.Mutex{}
		o.locks[key] = m
	}
	o.mu.Unlock()

	m.Lock()
	return m.Unlock
}
