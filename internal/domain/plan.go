package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is a catalog entry for a subscription tier. The catalog is static and
// admin-managed; name is unique (basic or premium).
type Plan struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           PlanName           `bson:"name" json:"name"`
	Price          float64            `bson:"price" json:"price"`
	DurationInDays int                `bson:"durationInDays" json:"durationInDays"`
	Features       []string           `bson:"features" json:"features"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
