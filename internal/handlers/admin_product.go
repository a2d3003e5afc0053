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

type productCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	SaleEnabled bool     `json:"saleEnabled"`
	SalePrice   *float64 `json:"salePrice"`
	Category    []string `json:"category"`
	Description string   `json:"description"`
	Barcode     string   `json:"barcode"`
	Brand       string   `json:"brand"`
	ImagePath   string   `json:"imagePath"`
	Stock       *int     `json:"stock"`
	IsActive    *bool    `json:"isActive"`
	IsCampaign  bool     `json:"isCampaign"`
}

type productUpdateRequest struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price"`
	SaleEnabled *bool     `json:"saleEnabled"`
	SalePrice   *float64  `json:"salePrice"`
	Category    *[]string `json:"category"`
	Description *string   `json:"description"`
	Barcode     *string   `json:"barcode"`
	Brand       *string   `json:"brand"`
	ImagePath   *string   `json:"imagePath"`
	Stock       *int      `json:"stock"`
	IsActive    *bool     `json:"isActive"`
	IsCampaign  *bool     `json:"isCampaign"`
}

// GetAdminProducts lists products for the admin panel, soft-deleted ones
// included when ?includeDeleted=true.
func GetAdminProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		filter := bson.M{}
		if c.Query("includeDeleted") != "true" {
			filter["isDeleted"] = bson.M{"$ne": true}
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["name"] = bson.M{"$regex": search, "$options": "i"}
		}

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		if pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
				return
			}
			findOptions.SetSkip((page - 1) * limit).SetLimit(limit)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": products})
	}
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req productCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		salePrice := 0.0
		if req.SalePrice != nil {
			salePrice = *req.SalePrice
		}
		if err := validateSaleFields(req.Price, req.SaleEnabled, salePrice, req.SalePrice != nil); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		stock := 0
		if req.Stock != nil {
			stock = *req.Stock
		}
		if stock < 0 {
			respondWithError(c, http.StatusBadRequest, route, "stock cannot be negative")
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		product := models.Product{
			Name:        strings.TrimSpace(req.Name),
			Price:       req.Price,
			SaleEnabled: req.SaleEnabled,
			SalePrice:   salePrice,
			Category:    models.StringList(req.Category),
			Description: strings.TrimSpace(req.Description),
			Barcode:     strings.TrimSpace(req.Barcode),
			Brand:       strings.TrimSpace(req.Brand),
			ImagePath:   strings.TrimSpace(req.ImagePath),
			Stock:       stock,
			IsActive:    isActive,
			IsCampaign:  req.IsCampaign,
			CreatedAt:   time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "barcode already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		product.ID = result.InsertedID.(primitive.ObjectID)
		product.InStock = product.Stock > 0
		product.IsOnSale = isProductOnSale(product.Price, product.SaleEnabled, product.SalePrice)

		log.Println("[PRODUCT] [INFO] product created:", product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProduct applies a partial update. Price and sale fields go through the
// sale resolution rules so a partial edit cannot leave an invalid sale state.
func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing bson.M
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		current, err := normalizeProductDocument(existing)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		sale, err := resolveSalePatch(current.Price, current.SaleEnabled, current.SalePrice, salePatch{
			Price:       req.Price,
			SaleEnabled: req.SaleEnabled,
			SalePrice:   req.SalePrice,
		})
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		update := bson.M{}
		if req.Price != nil {
			update["price"] = sale.Price
		}
		if sale.SetSaleEnabled {
			update["saleEnabled"] = sale.SaleEnabled
		}
		if sale.SetSalePrice {
			update["salePrice"] = sale.SalePrice
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
		}
		if req.Category != nil {
			update["category"] = models.StringList(*req.Category)
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Barcode != nil {
			update["barcode"] = strings.TrimSpace(*req.Barcode)
		}
		if req.Brand != nil {
			update["brand"] = strings.TrimSpace(*req.Brand)
		}
		if req.ImagePath != nil {
			update["imagePath"] = strings.TrimSpace(*req.ImagePath)
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				respondWithError(c, http.StatusBadRequest, route, "stock cannot be negative")
				return
			}
			update["stock"] = *req.Stock
		}
		if req.IsActive != nil {
			update["isActive"] = *req.IsActive
		}
		if req.IsCampaign != nil {
			update["isCampaign"] = *req.IsCampaign
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		var raw bson.M
		err = db.Collection("products").FindOneAndUpdate(ctx,
			bson.M{"_id": productID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&raw)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "barcode already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		updated, err := normalizeProductDocument(raw)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		log.Println("[PRODUCT] [INFO] product updated:", productID.Hex())
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteProduct soft-deletes: the document stays so existing order line items
// keep a valid reference.
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		result, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": productID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{
				"isDeleted": true,
				"isActive":  false,
				"deletedAt": now,
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		log.Println("[PRODUCT] [INFO] product soft-deleted:", productID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "product deleted"})
	}
}
