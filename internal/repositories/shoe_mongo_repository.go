package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shoestore/internal/models"
)

// shoeCollection is the single document collection this service owns.
const shoeCollection = "shoe"

// Connect opens a MongoDB client for the given connection string and
// returns a handle to the named database. The driver dials lazily, so a
// configured-but-unreachable server only surfaces errors at call time.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return client, client.Database(dbName), nil
}

// MongoShoeRepository is a MongoDB implementation of ShoeRepository.
// A nil database handle is tolerated: every method then reports
// ErrStoreNotInitialized so callers can degrade per their own policy.
type MongoShoeRepository struct {
	db *mongo.Database
}

// NewMongoShoeRepository creates a new instance of MongoShoeRepository.
// db may be nil when the service runs without a configured store.
func NewMongoShoeRepository(db *mongo.Database) *MongoShoeRepository {
	return &MongoShoeRepository{
		db: db,
	}
}

func (r *MongoShoeRepository) collection() (*mongo.Collection, error) {
	if r.db == nil {
		return nil, ErrStoreNotInitialized
	}
	return r.db.Collection(shoeCollection), nil
}

// Find returns up to filter.Limit shoes matching the equality filter, in
// the store's natural return order.
func (r *MongoShoeRepository) Find(ctx context.Context, filter models.ShoeFilter) ([]models.Shoe, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	query := bson.M{}
	if filter.Brand != "" {
		query["brand"] = filter.Brand
	}
	if filter.Featured != nil {
		query["featured"] = *filter.Featured
	}

	opts := options.Find()
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list shoes: %w", err)
	}
	defer cursor.Close(ctx)

	shoes := []models.Shoe{}
	if err := cursor.All(ctx, &shoes); err != nil {
		return nil, fmt.Errorf("failed to decode shoes: %w", err)
	}
	return shoes, nil
}

// Insert stores one shoe and returns its newly assigned identifier as a
// hex string.
func (r *MongoShoeRepository) Insert(ctx context.Context, shoe *models.Shoe) (string, error) {
	coll, err := r.collection()
	if err != nil {
		return "", err
	}

	res, err := coll.InsertOne(ctx, shoe)
	if err != nil {
		return "", fmt.Errorf("failed to insert shoe: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted ID type %T", res.InsertedID)
	}
	shoe.ID = oid
	return oid.Hex(), nil
}

// InsertMany stores a batch of shoes and returns how many were inserted.
func (r *MongoShoeRepository) InsertMany(ctx context.Context, shoes []models.Shoe) (int, error) {
	coll, err := r.collection()
	if err != nil {
		return 0, err
	}

	docs := make([]interface{}, len(shoes))
	for i := range shoes {
		docs[i] = shoes[i]
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shoes: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// Count returns the total number of shoe documents.
func (r *MongoShoeRepository) Count(ctx context.Context) (int64, error) {
	coll, err := r.collection()
	if err != nil {
		return 0, err
	}

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count shoes: %w", err)
	}
	return count, nil
}

// DistinctBrands returns the set of brand values present across all shoes.
func (r *MongoShoeRepository) DistinctBrands(ctx context.Context) ([]string, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	values, err := coll.Distinct(ctx, "brand", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct brands: %w", err)
	}

	brands := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			brands = append(brands, s)
		}
	}
	return brands, nil
}

// CollectionNames lists up to limit collection names in the database,
// implementing the StoreProbe used by the diagnostics endpoint.
func (r *MongoShoeRepository) CollectionNames(ctx context.Context, limit int) ([]string, error) {
	if r.db == nil {
		return nil, ErrStoreNotInitialized
	}
	names, err := r.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}
