package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/middleware"
	"backend/internal/models"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)
		success := false
		defer func() { middleware.RecordOrderOperation("list", success) }()

		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["orderStatus"] = status
		}
		if payment := strings.TrimSpace(c.Query("paymentStatus")); payment != "" {
			filter["paymentStatus"] = payment
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

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		success = true
		c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
	}
}

// UpdateOrderStatus applies an admin status change. Transitions only move
// forward; cancelled and completed orders are terminal.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:orderId/status"
		defer handlePanic(c, route)
		success := false
		defer func() { middleware.RecordOrderOperation("status", success) }()

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "status is required")
			return
		}
		newStatus := models.OrderStatus(strings.TrimSpace(req.Status))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"orderId": c.Param("orderId")}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !models.ValidStatusTransition(order.OrderStatus, newStatus) {
			respondWithError(c, http.StatusBadRequest, route, "invalid status transition")
			return
		}

		// The current status in the filter keeps a concurrent update from
		// skipping a step.
		res, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{"orderId": order.OrderID, "orderStatus": order.OrderStatus},
			bson.M{"$set": bson.M{
				"orderStatus": newStatus,
				"updatedAt":   time.Now(),
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusConflict, route, "order was updated concurrently")
			return
		}

		log.Printf("[ORDER] [INFO] order %s status %s -> %s", order.OrderID, order.OrderStatus, newStatus)
		success = true
		c.JSON(http.StatusOK, gin.H{"success": true, "orderId": order.OrderID, "status": newStatus})
	}
}

func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:orderId"
		defer handlePanic(c, route)

		orderID := strings.TrimSpace(c.Param("orderId"))
		if orderID == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"orderId": orderID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "order deleted"})
	}
}
