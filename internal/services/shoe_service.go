package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"shoestore/internal/models"
	"shoestore/internal/repositories"
)

// ErrStoreUnavailable is returned by SeedDemoData when no store is
// configured. Seeding is the one strict path: every other operation
// degrades instead of failing.
var ErrStoreUnavailable = errors.New("database not configured")

// EventPublisher publishes catalog events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ShoeService handles business logic for the shoe catalog.
type ShoeService struct {
	repo      repositories.ShoeRepository
	publisher EventPublisher // nil when no broker is configured
}

// NewShoeService creates a new ShoeService. publisher may be nil, in which
// case catalog events are skipped.
func NewShoeService(repo repositories.ShoeRepository, publisher EventPublisher) *ShoeService {
	return &ShoeService{
		repo:      repo,
		publisher: publisher,
	}
}

// ListShoes retrieves shoes matching the filter. Store failures propagate
// to the caller; listing has no degraded mode.
func (s *ShoeService) ListShoes(ctx context.Context, filter models.ShoeFilter) ([]models.Shoe, error) {
	return s.repo.Find(ctx, filter)
}

// CreateShoe inserts one shoe and returns its assigned identifier as a
// string. The record is stored exactly as given: in particular, no
// created_at/updated_at stamps are added on this path.
func (s *ShoeService) CreateShoe(ctx context.Context, shoe *models.Shoe) (string, error) {
	id, err := s.repo.Insert(ctx, shoe)
	if err != nil {
		return "", fmt.Errorf("failed to create shoe: %w", err)
	}

	s.publishEvent("catalog.shoe.created", map[string]interface{}{
		"shoe_id": id,
		"name":    shoe.Name,
		"brand":   shoe.Brand,
		"price":   shoe.Price,
	})

	return id, nil
}

// ListBrands returns the distinct brand values across all shoes. Any store
// failure is logged and degraded to an empty list, never an error.
func (s *ShoeService) ListBrands(ctx context.Context) []string {
	brands, err := s.repo.DistinctBrands(ctx)
	if err != nil {
		log.Printf("Could not list brands, returning empty set: %v", err)
		return []string{}
	}
	return brands
}

// SeedResult reports the outcome of a seeding attempt.
type SeedResult struct {
	Inserted      int
	ExistingCount int64
	AlreadySeeded bool
}

// SeedDemoData inserts the fixed demo catalog unless any shoe record
// already exists. The guard is keyed on collection non-emptiness, not
// content, and is not protected against two concurrent seed calls.
func (s *ShoeService) SeedDemoData(ctx context.Context) (*SeedResult, error) {
	count, err := s.repo.Count(ctx)
	if errors.Is(err, repositories.ErrStoreNotInitialized) {
		return nil, ErrStoreUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to count existing shoes: %w", err)
	}
	if count > 0 {
		return &SeedResult{AlreadySeeded: true, ExistingCount: count}, nil
	}

	inserted, err := s.repo.InsertMany(ctx, demoShoes(time.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("failed to seed demo data: %w", err)
	}

	s.publishEvent("catalog.seeded", map[string]interface{}{
		"inserted": inserted,
	})

	return &SeedResult{Inserted: inserted}, nil
}

// publishEvent sends a catalog event to the broker if one is configured.
// Publishing failures are logged, never surfaced to the request.
func (s *ShoeService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}

	payload["event_id"] = uuid.New().String()
	payload["occurred_at"] = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

func floatPtr(f float64) *float64 { return &f }

// demoShoes is the fixed four-record demo catalog. Unlike API-created
// records, seeded records carry created_at/updated_at stamps.
func demoShoes(now time.Time) []models.Shoe {
	return []models.Shoe{
		{
			Name:        "Air Zoom Bolt",
			Brand:       "Nike",
			Price:       139.99,
			Description: "Responsive cushioning with a sleek, breathable upper.",
			Images: []string{
				"https://images.unsplash.com/photo-1542291026-7eec264c27ff?q=80&w=1200&auto=format&fit=crop",
			},
			Colors:    []string{"Black", "White", "Volt"},
			Sizes:     []float64{7, 8, 9, 10, 11, 12},
			Featured:  true,
			Rating:    floatPtr(4.6),
			InStock:   true,
			CreatedAt: &now,
			UpdatedAt: &now,
		},
		{
			Name:        "UltraRide Blaze",
			Brand:       "Puma",
			Price:       119.0,
			Description: "Lightweight ride with energetic foam for daily training.",
			Images: []string{
				"https://images.unsplash.com/photo-1525966222134-fcfa99b8ae77?q=80&w=1200&auto=format&fit=crop",
			},
			Colors:    []string{"Red", "Black"},
			Sizes:     []float64{6, 7, 8, 9, 10, 11},
			Featured:  true,
			Rating:    floatPtr(4.4),
			InStock:   true,
			CreatedAt: &now,
			UpdatedAt: &now,
		},
		{
			Name:        "Air Max Nova",
			Brand:       "Nike",
			Price:       159.5,
			Description: "Iconic Air unit comfort remixed for modern lifestyle.",
			Images: []string{
				"https://images.unsplash.com/photo-1519741497674-611481863552?q=80&w=1200&auto=format&fit=crop",
			},
			Colors:    []string{"Blue", "White"},
			Sizes:     []float64{7, 8, 9, 9.5, 10, 11},
			Featured:  false,
			Rating:    floatPtr(4.7),
			InStock:   true,
			CreatedAt: &now,
			UpdatedAt: &now,
		},
		{
			Name:        "RS-Fast Flux",
			Brand:       "Puma",
			Price:       99.99,
			Description: "Bold DNA with next-gen cushioning and street-ready looks.",
			Images: []string{
				"https://images.unsplash.com/photo-1542291020-23006e0e2f87?q=80&w=1200&auto=format&fit=crop",
			},
			Colors:    []string{"White", "Teal"},
			Sizes:     []float64{6, 7, 8, 9, 10},
			Featured:  false,
			Rating:    floatPtr(4.2),
			InStock:   true,
			CreatedAt: &now,
			UpdatedAt: &now,
		},
	}
}
