package application

import "sync"

// resourceLocker serializes the check-then-act window of booking creation
// per resource. Two racing Create calls for the same resource must never
// both observe it as available; calls for different resources proceed in
// parallel.
//
// Entries are never removed: the table is bounded by the resource catalog,
// which is small and admin-curated.
type resourceLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newResourceLocker() *resourceLocker {
	return &resourceLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the resource id and returns its unlock func.
func (l *resourceLocker) Lock(resourceID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[resourceID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[resourceID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
