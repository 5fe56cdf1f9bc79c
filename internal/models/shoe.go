package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shoe represents one document in the "shoe" collection.
// The store-native ObjectID is exposed to clients as a hex string under
// the "id" key; the raw identifier type never appears in responses.
type Shoe struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Brand       string             `json:"brand" bson:"brand"`
	Price       float64            `json:"price" bson:"price"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Images      []string           `json:"images" bson:"images"`
	Colors      []string           `json:"colors" bson:"colors"`
	Sizes       []float64          `json:"sizes" bson:"sizes"`
	Featured    bool               `json:"featured" bson:"featured"`
	Rating      *float64           `json:"rating,omitempty" bson:"rating,omitempty"`
	InStock     bool               `json:"in_stock" bson:"in_stock"`
	// Only the seed path sets these; records created through the API
	// leave them absent. Client code may rely on either shape.
	CreatedAt *time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// ShoeFilter describes the optional equality filters for listing shoes.
// A nil/empty field is omitted from the query entirely rather than
// matched against a default value.
type ShoeFilter struct {
	Brand    string
	Featured *bool
	Limit    int64
}
