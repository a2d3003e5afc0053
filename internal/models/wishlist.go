package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wishlist holds the product references a user saved for later. One document
// per user, created lazily like the cart.
type Wishlist struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID   `bson:"userId" json:"userId"`
	ProductIDs []primitive.ObjectID `bson:"productIds" json:"productIds"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}
