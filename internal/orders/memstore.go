package orders

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the in-memory Store backing used for local runs and tests.
// A single mutex serializes updates, which trivially satisfies the per-order
// atomicity requirement.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Order
	nowFunc func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Order),
		nowFunc: time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[o.ID]; exists {
		return ErrDuplicateOrder
	}
	s.records[o.ID] = o.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.records[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Order
	for _, o := range s.records {
		if strings.EqualFold(o.Customer.Email, email) {
			out = append(out, o.Clone())
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.records))
	for _, o := range s.records {
		out = append(out, o.Clone())
	}
	sortByCreated(out)
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(*Order) error) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.records[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	working := o.Clone()
	if err := mutate(&working); err != nil {
		return Order{}, err
	}
	working.UpdatedAt = s.nowFunc()
	working.Version++
	s.records[id] = working.Clone()
	return working, nil
}

func sortByCreated(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}
