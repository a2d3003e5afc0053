package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type wishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// GetWishlist returns the caller's saved products, hydrated and in the order
// they were added. References to products deleted since saving are skipped.
func GetWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var wishlist models.Wishlist
		err := db.Collection("wishlists").FindOne(ctx, bson.M{"userId": userID}).Decode(&wishlist)
		if err != nil && err != mongo.ErrNoDocuments {
			log.Println("[WISHLIST] [ERROR] get wishlist failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if err == mongo.ErrNoDocuments || len(wishlist.ProductIDs) == 0 {
			c.JSON(http.StatusOK, gin.H{"data": []models.Product{}})
			return
		}

		cursor, err := db.Collection("products").Find(ctx, bson.M{
			"_id":       bson.M{"$in": wishlist.ProductIDs},
			"isDeleted": bson.M{"$ne": true},
		})
		if err != nil {
			log.Println("[WISHLIST] [ERROR] list wishlist products failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0, len(wishlist.ProductIDs))
		if err := cursor.All(ctx, &products); err != nil {
			log.Println("[WISHLIST] [ERROR] decode wishlist products failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		productByID := make(map[primitive.ObjectID]models.Product, len(products))
		for _, product := range products {
			productByID[product.ID] = product
		}

		ordered := make([]models.Product, 0, len(products))
		for _, savedID := range wishlist.ProductIDs {
			if product, exists := productByID[savedID]; exists {
				ordered = append(ordered, product)
			}
		}

		c.JSON(http.StatusOK, gin.H{"data": ordered})
	}
}

func AddWishlistItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userId").(primitive.ObjectID)

		var req wishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[WISHLIST] [ERROR] invalid wishlist body:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
				return
			}
			log.Println("[WISHLIST] [ERROR] product lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		_, err = db.Collection("wishlists").UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{
				"$addToSet":    bson.M{"productIds": productID},
				"$set":         bson.M{"updatedAt": time.Now()},
				"$setOnInsert": bson.M{"userId": userID},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			log.Println("[WISHLIST] [ERROR] add wishlist item failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "wishlist updated"})
	}
}

func RemoveWishlistItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userId").(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("productId")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err = db.Collection("wishlists").UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{
				"$pull": bson.M{"productIds": productID},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			log.Println("[WISHLIST] [ERROR] remove wishlist item failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "wishlist updated"})
	}
}
