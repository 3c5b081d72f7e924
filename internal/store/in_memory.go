package store

import (
	"sync"

	"github.com/abgdnv/productapi/internal/errors"
	"github.com/google/uuid"
)

// inMemory implements ProductStore using an ordered in-memory slice.
// A slice rather than a map keeps the insertion-order contract observable
// through FindAll without extra bookkeeping.
type inMemory struct {
	mu       sync.RWMutex
	products []Product
}

// NewInMemoryStore creates a new instance of ProductStore, optionally
// preloaded with seed records. Seed IDs are kept as given.
func NewInMemoryStore(seed ...Product) ProductStore {
	products := make([]Product, len(seed))
	copy(products, seed)
	return &inMemory{
		products: products,
	}
}

// DefaultCatalog returns the records the service is seeded with at startup.
func DefaultCatalog() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "Laptop",
			Description: "High-performance laptop with 16GB RAM",
			Price:       11200,
			Category:    "electronics",
			InStock:     true,
		},
		{
			ID:          "2",
			Name:        "Smartphone",
			Description: "Latest model with 256GB storage",
			Price:       1800,
			Category:    "electronics",
			InStock:     true,
		},
		{
			ID:          "3",
			Name:        "Coffee Maker",
			Description: "Programmable coffee maker with timer",
			Price:       100,
			Category:    "kitchen",
			InStock:     false,
		},
	}
}

// FindAll retrieves a snapshot of all products in insertion order.
func (s *inMemory) FindAll() ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, len(s.products))
	copy(list, s.products)
	return list, nil
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	p := s.products[i]
	return &p, nil
}

// Create creates a new product with a generated ID and returns it.
func (s *inMemory) Create(fields ProductFields) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := Product{
		ID:          uuid.NewString(),
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Category:    fields.Category,
		InStock:     fields.InStock,
	}
	s.products = append(s.products, product)

	return &product, nil
}

// Replace overwrites an existing product's fields in place, keeping its ID
// and position.
func (s *inMemory) Replace(id string, fields ProductFields) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	s.products[i] = Product{
		ID:          id,
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Category:    fields.Category,
		InStock:     fields.InStock,
	}
	p := s.products[i]
	return &p, nil
}

// DeleteByID deletes a product by its ID and returns the removed record.
func (s *inMemory) DeleteByID(id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	removed := s.products[i]
	s.products = append(s.products[:i], s.products[i+1:]...)
	return &removed, nil
}

// indexOf returns the position of the product with the given ID, or -1.
// Callers must hold the mutex.
func (s *inMemory) indexOf(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}
