package session

import (
	"sync"
	"time"
)

// Store keeps one State per visitor session.
type Store struct {
	mu     sync.Mutex
	states map[string]State
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{states: make(map[string]State), now: time.Now}
}

// Get returns the session's state, or a fresh input state.
func (s *Store) Get(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[id]; ok {
		return st
	}
	return Initial()
}

func (s *Store) Put(id string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.UpdatedAt = s.now()
	s.states[id] = st
}

// Update applies fn to the current state under the lock. The state is only
// replaced when fn succeeds.
func (s *Store) Update(id string, fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.states[id]
	if !ok {
		cur = Initial()
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	next.UpdatedAt = s.now()
	s.states[id] = next
	return next, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Prune drops sessions untouched for longer than maxAge and returns how many
// went.
func (s *Store) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxAge)
	n := 0
	for id, st := range s.states {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.states, id)
			n++
		}
	}
	return n
}
