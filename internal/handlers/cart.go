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

type addCartItemRequest struct {
	ProductID string   `json:"productId" binding:"required"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Price     *float64 `json:"price"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
	Weight    string   `json:"weight"`
}

type updateCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Weight    string `json:"weight"`
}

func variantFromStrings(size, color, weight string) models.Variant {
	return models.Variant{
		Size:   strings.TrimSpace(size),
		Color:  strings.TrimSpace(color),
		Weight: strings.TrimSpace(weight),
	}
}

// loadCart reads the user's cart. A missing document reads as an empty cart;
// carts are created lazily on first save.
func loadCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.Cart, bool, error) {
	var cart models.Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, false, nil
	}
	if err != nil {
		return models.Cart{}, false, err
	}
	return cart, true, nil
}

// saveCart upserts the cart document. The unique userId index guarantees two
// concurrent lazy creations collapse into one document.
func saveCart(ctx context.Context, db *mongo.Database, cart *models.Cart) error {
	now := time.Now()
	_, err := db.Collection("carts").UpdateOne(
		ctx,
		bson.M{"userId": cart.UserID},
		bson.M{
			"$set": bson.M{
				"items":     cart.Items,
				"subtotal":  cart.Subtotal,
				"total":     cart.Total,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// clearUserCart empties the cart in place. Used by the order and payment
// flows; never deletes the document.
func clearUserCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) error {
	_, err := db.Collection("carts").UpdateOne(
		ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{
			"items":     []models.CartItem{},
			"subtotal":  0.0,
			"total":     0.0,
			"updatedAt": time.Now(),
		}},
	)
	return err
}

func AddCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/add"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "productId and a positive quantity are required")
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}
		if req.Price != nil && *req.Price < 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must not be negative")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		unitPrice := effectiveProductPrice(product.Price, product.SaleEnabled, product.SalePrice)
		if req.Price != nil {
			unitPrice = *req.Price
		}

		cart, _, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cart.AddLine(models.CartItem{
			ProductID: productID,
			Name:      product.Name,
			Image:     product.ImagePath,
			UnitPrice: unitPrice,
			Quantity:  req.Quantity,
			Variant:   variantFromStrings(req.Size, req.Color, req.Weight),
			AddedAt:   time.Now(),
		})

		if err := saveCart(ctx, db, &cart); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[CART] [INFO] item added user=%s product=%s qty=%d", userID.Hex(), productID.Hex(), req.Quantity)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": cart})
	}
}

func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/update"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "productId and a positive quantity are required")
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, exists, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !exists {
			respondWithError(c, http.StatusNotFound, route, "cart not found")
			return
		}

		if !cart.SetLineQuantity(productID, variantFromStrings(req.Size, req.Color, req.Weight), req.Quantity) {
			respondWithError(c, http.StatusNotFound, route, "cart item not found")
			return
		}

		if err := saveCart(ctx, db, &cart); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": cart})
	}
}

func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/remove"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, exists, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !exists {
			respondWithError(c, http.StatusNotFound, route, "cart not found")
			return
		}

		// Removing an absent line is a no-op, not an error. The totals are
		// recomputed either way.
		removed := cart.RemoveLine(productID, variantFromStrings(
			c.Query("size"), c.Query("color"), c.Query("weight"),
		))
		if removed {
			if err := saveCart(ctx, db, &cart); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": cart, "removed": removed})
	}
}

func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/clear"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := clearUserCart(ctx, db, userID); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "cart cleared"})
	}
}

func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, _, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": cart})
	}
}
