package ledger

import (
	"context"
	"sync"
)

// MemStore keeps the pending cart in process memory.
type MemStore struct {
	mu    sync.RWMutex
	lines []Line
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Load(ctx context.Context) ([]Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

func (s *MemStore) Save(ctx context.Context, lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make([]Line, len(lines))
	copy(s.lines, lines)
	return nil
}
