package repositories

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shoestore/internal/models"
)

// InMemoryShoeRepository is an in-memory implementation of ShoeRepository.
// It preserves insertion order, which stands in for the store's natural
// return order in tests and broker-less local runs.
type InMemoryShoeRepository struct {
	shoes []models.Shoe
	mu    sync.RWMutex
}

// NewInMemoryShoeRepository creates a new instance of InMemoryShoeRepository.
func NewInMemoryShoeRepository() *InMemoryShoeRepository {
	return &InMemoryShoeRepository{
		shoes: []models.Shoe{},
	}
}

// Find returns up to filter.Limit shoes matching the equality filter.
func (r *InMemoryShoeRepository) Find(_ context.Context, filter models.ShoeFilter) ([]models.Shoe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := []models.Shoe{}
	for _, s := range r.shoes {
		if filter.Brand != "" && s.Brand != filter.Brand {
			continue
		}
		if filter.Featured != nil && s.Featured != *filter.Featured {
			continue
		}
		matches = append(matches, s)
		if filter.Limit > 0 && int64(len(matches)) >= filter.Limit {
			break
		}
	}
	return matches, nil
}

// Insert adds one shoe, assigning a fresh identifier.
func (r *InMemoryShoeRepository) Insert(_ context.Context, shoe *models.Shoe) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if shoe.ID.IsZero() {
		shoe.ID = primitive.NewObjectID()
	}
	r.shoes = append(r.shoes, *shoe)
	return shoe.ID.Hex(), nil
}

// InsertMany adds a batch of shoes.
func (r *InMemoryShoeRepository) InsertMany(_ context.Context, shoes []models.Shoe) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range shoes {
		if shoes[i].ID.IsZero() {
			shoes[i].ID = primitive.NewObjectID()
		}
		r.shoes = append(r.shoes, shoes[i])
	}
	return len(shoes), nil
}

// Count returns the number of stored shoes.
func (r *InMemoryShoeRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.shoes)), nil
}

// DistinctBrands returns the set of brand values with no duplicates.
func (r *InMemoryShoeRepository) DistinctBrands(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	brands := []string{}
	for _, s := range r.shoes {
		if !seen[s.Brand] {
			seen[s.Brand] = true
			brands = append(brands, s.Brand)
		}
	}
	return brands, nil
}

// CollectionNames reports the single collection this repository models.
func (r *InMemoryShoeRepository) CollectionNames(_ context.Context, limit int) ([]string, error) {
	names := []string{shoeCollection}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}
