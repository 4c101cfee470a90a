package store

import (
	"context"
	"fmt"
	"sync"

	"paygate_app_echo/internal/models"
)

// MemoryOrderStore is an in-memory OrderStore for tests and local
// experiments. It mirrors the gorm store's semantics, including the
// idempotent MarkPaid transition.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	meta   map[uint]map[string]string
	notes  map[uint][]string
	carts  map[uint]bool
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders: make(map[string]*models.Order),
		meta:   make(map[uint]map[string]string),
		notes:  make(map[uint][]string),
		carts:  make(map[uint]bool),
	}
}

// Put registers an order in the store.
func (s *MemoryOrderStore) Put(order *models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.UUID] = order
}

func (s *MemoryOrderStore) GetOrder(ctx context.Context, uuid string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[uuid]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *MemoryOrderStore) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.byID(orderID)
	if err != nil {
		return err
	}
	order.Status = status
	return nil
}

func (s *MemoryOrderStore) AddNote(ctx context.Context, orderID uint, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[orderID] = append(s.notes[orderID], note)
	return nil
}

func (s *MemoryOrderStore) GetMeta(ctx context.Context, orderID uint, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta[orderID][key], nil
}

func (s *MemoryOrderStore) SetMeta(ctx context.Context, orderID uint, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meta[orderID] == nil {
		s.meta[orderID] = make(map[string]string)
	}
	s.meta[orderID][key] = value
	return nil
}

func (s *MemoryOrderStore) MarkPaid(ctx context.Context, orderID uint, remoteTransactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.byID(orderID)
	if err != nil {
		return err
	}
	if order.Status == models.OrderStatusProcessing || order.Status == models.OrderStatusCompleted {
		return nil
	}
	order.Status = models.OrderStatusProcessing
	if s.meta[orderID] == nil {
		s.meta[orderID] = make(map[string]string)
	}
	s.meta[orderID][MetaPaidTransactionID] = remoteTransactionID
	return nil
}

func (s *MemoryOrderStore) EmptyCart(ctx context.Context, orderID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[orderID] = true
	return nil
}

// Notes returns the audit notes recorded for an order.
func (s *MemoryOrderStore) Notes(orderID uint) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notes[orderID]...)
}

// Metadata returns a copy of the metadata bag for an order.
func (s *MemoryOrderStore) Metadata(orderID uint) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.meta[orderID]))
	for k, v := range s.meta[orderID] {
		out[k] = v
	}
	return out
}

// CartEmptied reports whether EmptyCart was called for an order.
func (s *MemoryOrderStore) CartEmptied(orderID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[orderID]
}

func (s *MemoryOrderStore) byID(orderID uint) (*models.Order, error) {
	for _, order := range s.orders {
		if order.ID == orderID {
			return order, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
}
