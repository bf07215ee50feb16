package docmap

import "sync/atomic"

// Store holds the current Map and lets it be swapped while queries read it.
type Store struct {
	current atomic.Pointer[Map]
}

func NewStore(m Map) *Store {
	s := &Store{}
	s.Set(m)
	return s
}

func (s *Store) Set(m Map) {
	if m == nil {
		m = make(Map)
	}
	s.current.Store(&m)
}

func (s *Store) Get() Map {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *Store) URL(docID int) string {
	return s.Get().URL(docID)
}

func (s *Store) Len() int {
	return s.Get().Len()
}
