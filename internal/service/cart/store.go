package cart

import (
	"context"
	"sync"

	model "github.com/bargainmart/backend/internal/model/cart"
)

// Store persists cart snapshots per partition key.
type Store interface {
	Load(ctx context.Context, partition string) ([]model.Line, error)
	Save(ctx context.Context, snapshot model.Snapshot) error
	Clear(ctx context.Context, partition string) error
}

// MemoryStore implements Store with a map, used in tests and when Redis is
// not configured.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]model.Line
}

// NewMemoryStore returns an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]model.Line)}
}

// Load returns the stored lines for a partition, nil when absent.
func (s *MemoryStore) Load(_ context.Context, partition string) ([]model.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines, ok := s.snapshots[partition]
	if !ok {
		return nil, nil
	}
	return append([]model.Line(nil), lines...), nil
}

// Save overwrites the partition's snapshot.
func (s *MemoryStore) Save(_ context.Context, snapshot model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.Partition] = append([]model.Line(nil), snapshot.Lines...)
	return nil
}

// Clear removes the partition's snapshot.
func (s *MemoryStore) Clear(_ context.Context, partition string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, partition)
	return nil
}
