package syncutil

import "sync"

// OrderedSet is a set safe for concurrent Add and Snapshot calls.
// The zero value is ready to use.
type OrderedSet[T comparable] struct {
	mu    sync.RWMutex
	index map[T]struct{}
	order []T
}

// Add inserts v and reports whether it was not present before.
func (s *OrderedSet[T]) Add(v T) bool {
	s.mu.RLock()
	_, exists := s.index[v]
	s.mu.RUnlock()
	if exists {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists = s.index[v]; exists {
		return false
	}
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	s.index[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Contains reports whether v is in the set.
func (s *OrderedSet[T]) Contains(v T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[v]
	return ok
}

// Len returns the number of members.
func (s *OrderedSet[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Snapshot returns a copy of the members in first-added order.
func (s *OrderedSet[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.order...)
}
