package fulfillment

import "sync"

// keyedMutex provides one mutex per key. Transitions for a single order
// and read-modify-writes for a single article each lock their own key,
// so work on disjoint keys proceeds in parallel.
//
// Entries are retained for the life of the process; the key space is
// bounded by the order and article volume of the shop.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*sync.Mutex)}
}

// Lock locks the mutex for key and returns the unlock function.
func (km *keyedMutex) Lock(key int64) func() {
	km.mu.Lock()
	l, ok := km.locks[key]
	if !ok {
		l = &sync.Mutex{}
		km.locks[key] = l
	}
	km.mu.Unlock()

	l.Lock()
	return l.Unlock
}
