package countries

import (
	"container/list"
	"sync"
)

// Sessions keeps one Suggester per client key, evicting the least
// recently used once max is reached.
type Sessions struct {
	mu      sync.Mutex
	max     int
	factory func() *Suggester
	order   *list.List
	entries map[string]*list.Element
}

type sessionEntry struct {
	key string
	s   *Suggester
}

func NewSessions(max int, factory func() *Suggester) *Sessions {
	if max < 1 {
		max = 1
	}
	return &Sessions{
		max:     max,
		factory: factory,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Get returns the Suggester for key, creating it if needed.
func (s *Sessions) Get(key string) *Suggester {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[key]; ok {
		s.order.MoveToFront(el)
		return el.Value.(*sessionEntry).s
	}
	for s.order.Len() >= s.max {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*sessionEntry).key)
	}
	e := &sessionEntry{key: key, s: s.factory()}
	s.entries[key] = s.order.PushFront(e)
	return e.s
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
