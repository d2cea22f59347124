package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]graph.Layout
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]graph.Layout)}
}

func (s *MemoryStore) Save(ctx context.Context, l *graph.Layout) (string, error) {
	prepare(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[l.ID] = *l
	return l.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*graph.Layout, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return &l, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]graph.Layout, error) {
	s.mu.RLock()
	out := make([]graph.Layout, 0, len(s.records))
	for _, l := range s.records {
		out = append(out, l)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, newestFirst)
	return out[:min(len(out), listLimit(limit))], nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func newestFirst(a, b graph.Layout) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}

var _ Store = (*MemoryStore)(nil)
