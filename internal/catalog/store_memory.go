package catalog

import (
	"context"
	"sync"
)

// MemStore keeps the catalog in process memory. It follows the same
// first-access seeding rule as the file-backed store. Load may seed, so
// both paths take the one write lock.
type MemStore struct {
	mu     sync.Mutex
	rows   []Product
	seeded bool
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Load(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		s.rows = Seed()
		s.seeded = true
	}

	out := make([]Product, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *MemStore) Save(ctx context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make([]Product, len(products))
	copy(s.rows, products)
	s.seeded = true
	return nil
}
