package repositories

import (
	"context"
	"errors"

	"shoestore/internal/models"
)

// ErrStoreNotInitialized is returned by every repository method when the
// service is running without a configured store handle.
var ErrStoreNotInitialized = errors.New("store not initialized")

// ShoeRepository defines the interface for shoe data access.
type ShoeRepository interface {
	Find(ctx context.Context, filter models.ShoeFilter) ([]models.Shoe, error)
	Insert(ctx context.Context, shoe *models.Shoe) (string, error)
	InsertMany(ctx context.Context, shoes []models.Shoe) (int, error)
	Count(ctx context.Context) (int64, error)
	DistinctBrands(ctx context.Context) ([]string, error)
}

// StoreProbe exposes the reachability check used by the diagnostics
// endpoint. Separate from ShoeRepository because probing the store is not
// shoe data access.
type StoreProbe interface {
	CollectionNames(ctx context.Context, limit int) ([]string, error)
}
