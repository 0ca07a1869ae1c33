package storage

import (
	"sync"

	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

var _ port.SessionKeeper = (*Sessions)(nil)

type sessionEntry struct {
	mu      sync.Mutex
	session domain.Session
}

// Sessions keeps per-user interaction state, same lifecycle and locking
// discipline as Carts.
type Sessions struct {
	mu      sync.RWMutex
	entries map[int64]*sessionEntry
}

func NewSessions() *Sessions {
	return &Sessions{entries: make(map[int64]*sessionEntry)}
}

func (s *Sessions) entry(chatID int64) *sessionEntry {
	s.mu.RLock()
	e, ok := s.entries[chatID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[chatID]; ok {
		return e
	}
	e = &sessionEntry{}
	s.entries[chatID] = e
	return e
}

func (s *Sessions) Update(chatID int64, fn func(*domain.Session)) {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session)
}

func (s *Sessions) Session(chatID int64) domain.Session {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}
