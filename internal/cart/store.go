package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Store hands out one cart per shopper. Carts live for the lifetime of the
// process; a cart is dropped only by Clear or a successful placement.
type Store struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*Cart
}

// NewStore builds an empty cart store.
func NewStore() *Store {
	return &Store{carts: make(map[uuid.UUID]*Cart)}
}

// Get returns the shopper's cart, creating it on first use.
func (s *Store) Get(shopperID uuid.UUID) *Cart {
	s.mu.RLock()
	existing, ok := s.carts[shopperID]
	s.mu.RUnlock()
	if ok {
		return existing
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.carts[shopperID]; ok {
		return existing
	}
	fresh := &Cart{}
	s.carts[shopperID] = fresh
	return fresh
}

// Clear empties and forgets the shopper's cart.
func (s *Store) Clear(shopperID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.carts[shopperID]; ok {
		existing.Clear()
		delete(s.carts, shopperID)
	}
}
