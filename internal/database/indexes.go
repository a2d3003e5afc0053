package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	}

	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		logger.Error().Err(err).Msg("users email index")
		return err
	}
	logger.Info().Msg("users email_unique index ready")
	return nil
}

func EnsureProductIndexes(db *mongo.Database, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	barcodeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "barcode", Value: 1}},
		Options: options.Index().
			SetName("barcode_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"barcode": bson.M{"$exists": true},
			}),
	}

	_, err := db.Collection("products").Indexes().CreateOne(ctx, barcodeIndex)
	if err != nil {
		logger.Error().Err(err).Msg("products barcode index")
		return err
	}
	logger.Info().Msg("products barcode_unique index ready")
	return nil
}

// EnsureCartIndexes enforces the one-active-cart-per-user rule at the storage
// layer so concurrent lazy creations cannot produce two cart documents.
func EnsureCartIndexes(db *mongo.Database, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_unique").SetUnique(true),
	}

	_, err := db.Collection("carts").Indexes().CreateOne(ctx, userIndex)
	if err != nil {
		logger.Error().Err(err).Msg("carts userId index")
		return err
	}
	logger.Info().Msg("carts userId_unique index ready")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetName("orderId_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
	}

	_, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Error().Err(err).Msg("orders indexes")
		return err
	}
	logger.Info().Msg("orders indexes ready")
	return nil
}

func EnsurePaymentIndexes(db *mongo.Database, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tranIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetName("orderId_unique").SetUnique(true),
	}

	_, err := db.Collection("payments").Indexes().CreateOne(ctx, tranIndex)
	if err != nil {
		logger.Error().Err(err).Msg("payments orderId index")
		return err
	}
	logger.Info().Msg("payments orderId_unique index ready")
	return nil
}

func EnsureWishlistIndexes(db *mongo.Database, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_unique").SetUnique(true),
	}

	_, err := db.Collection("wishlists").Indexes().CreateOne(ctx, userIndex)
	if err != nil {
		logger.Error().Err(err).Msg("wishlists userId index")
		return err
	}
	logger.Info().Msg("wishlists userId_unique index ready")
	return nil
}

func EnsureReviewIndexes(db *mongo.Database, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// One review per user per product.
	reviewIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "productId", Value: 1},
			{Key: "userId", Value: 1},
		},
		Options: options.Index().SetName("product_user_unique").SetUnique(true),
	}

	_, err := db.Collection("reviews").Indexes().CreateOne(ctx, reviewIndex)
	if err != nil {
		logger.Error().Err(err).Msg("reviews index")
		return err
	}
	logger.Info().Msg("reviews product_user_unique index ready")
	return nil
}
