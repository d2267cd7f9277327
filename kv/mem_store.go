package kv

import (
	"sync"

	"github.com/google/btree"
)

const defaultBTreeDegree = 64

// MemStore is a simple Store backed by memory. Data is not written to disk,
// which makes it the engine of choice for pure contention measurements and
// for tests.
type MemStore struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

type memItem struct {
	key string
	rec Record
}

func (m memItem) Less(than btree.Item) bool {
	return m.key < than.(memItem).key
}

func NewMemStore() *MemStore {
	return &MemStore{tree: btree.New(defaultBTreeDegree)}
}

// Get returns a copy of the stored record so callers cannot alias the
// store's own state.
func (s *MemStore) Get(key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item := s.tree.Get(memItem{key: key})
	if item == nil {
		return nil, nil
	}
	return item.(memItem).rec.Clone(), nil
}

func (s *MemStore) Put(key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.ReplaceOrInsert(memItem{key: key, rec: rec.Clone()})
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Delete(memItem{key: key})
	return nil
}

func (s *MemStore) Close() error {
	return nil
}

// Len returns the number of stored records.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

// Keys returns all stored keys in order.
func (s *MemStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, s.tree.Len())
	s.tree.Ascend(func(item btree.Item) bool {
		keys = append(keys, item.(memItem).key)
		return true
	})
	return keys
}
