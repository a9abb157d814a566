package testutil

import (
	"maps"
	"sync"
)

// InMemoryStore is a generic map-backed store used by the typed test
// repositories. save() captures the current state and returns a restore
// function, which is how the in-memory transaction runner implements
// all-or-nothing semantics.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{items: make(map[string]T)}
}

func (s *InMemoryStore[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	return v, ok
}

func (s *InMemoryStore[T]) Set(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = v
}

func (s *InMemoryStore[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *InMemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// All returns a shallow copy of the current contents.
func (s *InMemoryStore[T]) All() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.items)
}

func (s *InMemoryStore[T]) save() func() {
	s.mu.RLock()
	snapshot := maps.Clone(s.items)
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		s.items = snapshot
		s.mu.Unlock()
	}
}
