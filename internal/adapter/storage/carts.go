package storage

import (
	"sync"

	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

var _ port.CartKeeper = (*Carts)(nil)

type cartEntry struct {
	mu   sync.Mutex
	cart domain.Cart
}

// Carts keeps per-user carts. Entries are created lazily on first
// interaction and live until an explicit clear or process exit; there is
// no eviction. Each entry has its own mutex so overlapping actions from
// one user serialize without blocking other users.
type Carts struct {
	mu      sync.RWMutex
	entries map[int64]*cartEntry
}

func NewCarts() *Carts {
	return &Carts{entries: make(map[int64]*cartEntry)}
}

func (s *Carts) entry(chatID int64) *cartEntry {
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
	e = &cartEntry{cart: domain.Cart{Items: make(map[string]int)}}
	s.entries[chatID] = e
	return e
}

// Update runs fn with exclusive access to the user's cart.
func (s *Carts) Update(chatID int64, fn func(*domain.Cart)) {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.cart)
}

// Cart returns a snapshot copy; mutating it does not affect the stored
// cart.
func (s *Carts) Cart(chatID int64) domain.Cart {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.cart
	snap.Items = make(map[string]int, len(e.cart.Items))
	for id, qty := range e.cart.Items {
		snap.Items[id] = qty
	}
	return snap
}
