package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/cache"
	"backend/internal/models"
)

const (
	activeCategoriesCacheKey = "categories:active"
	categoryCacheTTL         = 5 * time.Minute
)

// GetCategories serves the active category list through the cache; the list
// changes only on admin writes, which invalidate the key.
func GetCategories(db *mongo.Database, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		log.Printf("[%s] hit", route)

		if cached, ok := store.Get(activeCategoriesCacheKey); ok {
			if categories, ok := cached.([]models.Category); ok {
				log.Printf("[%s] returning %d categories (cached)", route, len(categories))
				c.JSON(http.StatusOK, categories)
				return
			}
		}

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("categories").Find(
			ctx,
			bson.M{"isActive": true},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		categories := make([]models.Category, 0)
		if err := cursor.All(ctx, &categories); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		store.Set(activeCategoriesCacheKey, categories, categoryCacheTTL)

		log.Printf("[%s] returning %d categories", route, len(categories))
		c.JSON(http.StatusOK, categories)
	}
}
