package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned when a product id does not exist in the store.
var ErrNotFound = errors.New("product not found")

// Store exposes product retrieval and administration.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	FindByID(ctx context.Context, id string) (Product, error)
	Search(ctx context.Context, query, category string) ([]Product, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore implements Store with an in-memory slice, suitable for tests
// and running without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Product
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied products.
func NewMemoryStore(items []Product) *MemoryStore {
	return &MemoryStore{items: append([]Product(nil), items...)}
}

// List returns all products in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Product(nil), s.items...), nil
}

// FindByID looks up a product by identifier.
func (s *MemoryStore) FindByID(_ context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return Product{}, ErrNotFound
}

// Search filters by case-insensitive substring on name/description and, when
// category is non-empty, an exact category match.
func (s *MemoryStore) Search(_ context.Context, query, category string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Product, 0, len(s.items))
	for _, item := range s.items {
		if category != "" && item.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(item.Name), q) &&
			!strings.Contains(strings.ToLower(item.Description), q) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Create appends a product.
func (s *MemoryStore) Create(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, p)
	return nil
}

// Update replaces the product with the same id.
func (s *MemoryStore) Update(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == p.ID {
			s.items[i] = p
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes the product with the given id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
