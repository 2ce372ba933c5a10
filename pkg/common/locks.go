package common

import "sync"

// PathLocks serializes operations against individual file paths. Exactly one
// mutex is ever associated with a given path, even when callers race to
// create it; unrelated paths proceed fully in parallel.
type PathLocks struct {
	locks sync.Map // path -> *sync.Mutex
}

func NewPathLocks() *PathLocks {
	return &PathLocks{}
}

// Get returns the mutex guarding path, creating it on first use.
func (l *PathLocks) Get(path string) *sync.Mutex {
	actual, _ := l.locks.LoadOrStore(path, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Lock acquires the guard for path and returns its unlock function.
func (l *PathLocks) Lock(path string) func() {
	m := l.Get(path)
	m.Lock()
	return m.Unlock
}
