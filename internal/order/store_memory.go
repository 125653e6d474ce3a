package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Order
}

func NewMemStore() *MemStore {
	s := &MemStore{m: map[string]Order{}}
	for _, o := range seedOrders() {
		s.m[o.ID] = o
	}
	return s
}

func seedOrders() []Order {
	return []Order{
		{ID: "ORD-1001", Customer: "Jane Doe", TotalCents: 19900, Status: StatusProcessing, Date: time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC)},
		{ID: "ORD-1002", Customer: "John Smith", TotalCents: 7900, Status: StatusShipped, Date: time.Date(2025, 8, 7, 0, 0, 0, 0, time.UTC)},
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0, len(s.m))
	for _, o := range s.m {
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.m[id]
	return o, ok, nil
}

func (s *MemStore) Create(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[o.ID] = o
	return nil
}

func (s *MemStore) SetStatus(ctx context.Context, id string, status Status) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.m[id]
	if !ok {
		return Order{}, ErrNotFound
	}

	o.Status = status
	s.m[id] = o
	return o, nil
}
