package state

import "sync"

// Store owns the current State. Updates are serialised; readers get an
// immutable snapshot.
type Store struct {
	mu      sync.RWMutex
	current State
	version uint64
}

// NewStore creates a store holding initial
func NewStore(initial State) *Store {
	return &Store{current: initial}
}

// Snapshot returns the current state. The caller must not modify it.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Version counts successful updates
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update applies fn to the current state under the write lock. The result
// replaces the current state only when fn returns no error.
func (s *Store) Update(fn func(State) (State, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.current)
	if err != nil {
		return err
	}
	s.current = next
	s.version++
	return nil
}
