package engine

import "sync"

// ItemLocks serializes mutations of a single work item while letting
// different items proceed concurrently. Entries are dropped once unused.
type ItemLocks struct {
	mu    sync.Mutex
	locks map[string]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

func NewItemLocks() *ItemLocks {
	return &ItemLocks{locks: make(map[string]*itemLock)}
}

// Lock blocks until the item is free and returns its unlock function.
func (l *ItemLocks) Lock(id string) (unlock func()) {
	l.mu.Lock()
	il, ok := l.locks[id]
	if !ok {
		il = &itemLock{}
		l.locks[id] = il
	}
	il.refs++
	l.mu.Unlock()

	il.mu.Lock()
	return func() {
		il.mu.Unlock()
		l.mu.Lock()
		il.refs--
		if il.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *ItemLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
