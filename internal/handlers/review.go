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

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// GetProductReviews lists reviews for a product, newest first, with the
// average rating.
func GetProductReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("reviews").Find(ctx,
			bson.M{"productId": productID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			log.Println("[REVIEW] [ERROR] list reviews failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		reviews := make([]models.Review, 0)
		if err := cursor.All(ctx, &reviews); err != nil {
			log.Println("[REVIEW] [ERROR] decode reviews failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		average := 0.0
		if len(reviews) > 0 {
			sum := 0
			for _, review := range reviews {
				sum += review.Rating
			}
			average = float64(sum) / float64(len(reviews))
		}

		c.JSON(http.StatusOK, gin.H{
			"data":          reviews,
			"count":         len(reviews),
			"averageRating": average,
		})
	}
}

// CreateReview adds the caller's review. The unique productId+userId index
// turns a second attempt into a conflict.
func CreateReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userId").(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}

		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			log.Println("[REVIEW] [ERROR] product lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		review := models.Review{
			ProductID: productID,
			UserID:    userID,
			UserName:  user.Name,
			Rating:    req.Rating,
			Comment:   strings.TrimSpace(req.Comment),
			CreatedAt: time.Now(),
		}

		result, err := db.Collection("reviews").InsertOne(ctx, review)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "product already reviewed"})
				return
			}
			log.Println("[REVIEW] [ERROR] insert review failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		review.ID = result.InsertedID.(primitive.ObjectID)
		log.Println("[REVIEW] [INFO] review created:", review.ID.Hex())
		c.JSON(http.StatusCreated, review)
	}
}

// DeleteReview removes the caller's own review.
func DeleteReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userId").(primitive.ObjectID)

		reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("reviews").DeleteOne(ctx, bson.M{
			"_id":    reviewID,
			"userId": userID,
		})
		if err != nil {
			log.Println("[REVIEW] [ERROR] delete review failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
	}
}
