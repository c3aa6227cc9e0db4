package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/acoopRD/poc-finance/internal/models"
)

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	holdings map[string]models.Holding
	orders   []models.Order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{holdings: make(map[string]models.Holding)}
}

func (s *MemoryStore) GetHolding(_ context.Context, symbol string) (models.Holding, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.holdings[symbol]
	return h, ok, nil
}

func (s *MemoryStore) UpsertHolding(_ context.Context, holding models.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdings[holding.Symbol] = holding
	return nil
}

func (s *MemoryStore) DeleteHolding(_ context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.holdings, symbol)
	return nil
}

func (s *MemoryStore) ListHoldings(_ context.Context) ([]models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	holdings := make([]models.Holding, 0, len(s.holdings))
	for _, h := range s.holdings {
		holdings = append(holdings, h)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

func (s *MemoryStore) AppendOrder(_ context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, order)
	return nil
}

func (s *MemoryStore) ListOrders(_ context.Context, symbol string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if symbol == "" || o.Symbol == symbol {
			orders = append(orders, o)
		}
	}
	return orders, nil
}
