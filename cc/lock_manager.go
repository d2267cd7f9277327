package cc

import "sync"

// LockManager hands out exclusive per-key locks with all-or-nothing
// acquisition. A single mutex guards the whole table, so checking and taking
// a batch of keys is one atomic step and deadlock between acquirers is
// impossible. There should only be one LockManager per store, shared between
// all threads.
type LockManager struct {
	// Keys present in held are locked. Releases delete the entry, which is
	// indistinguishable from a never-locked key and keeps the table from
	// growing with the keyspace.
	held map[string]struct{}
	mu   sync.Mutex
}

func NewLockManager() *LockManager {
	return &LockManager{held: make(map[string]struct{})}
}

// TryAcquireAll locks every key in keys, or none of them. It returns false
// without changing any state if at least one key is already held.
func (lm *LockManager) TryAcquireAll(keys []string) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	for _, key := range keys {
		if _, ok := lm.held[key]; ok {
			return false
		}
	}
	for _, key := range keys {
		lm.held[key] = struct{}{}
	}
	return true
}

// ReleaseAll unlocks every key in keys. Releasing a key that is not held is
// a no-op.
func (lm *LockManager) ReleaseAll(keys []string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	for _, key := range keys {
		delete(lm.held, key)
	}
}
