package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/events"
	"backend/internal/middleware"
	"backend/internal/models"
)

type createOrderRequest struct {
	DeliveryAddressID string `json:"deliveryAddressId" binding:"required"`
	PaymentMethod     string `json:"paymentMethod"`
	PaymentType       string `json:"paymentType"`
}

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

// CreateOrder materializes the caller's cart into an order: line items are
// frozen with the cart's unit prices and the product's current name/image,
// stock is decremented atomically, and the cart is emptied afterwards.
func CreateOrder(db *mongo.Database, publisher events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)
		success := false
		defer func() { middleware.RecordOrderOperation("create", success) }()

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "deliveryAddressId is required")
			return
		}

		paymentMethod := models.PaymentMethod(strings.TrimSpace(req.PaymentMethod))
		if paymentMethod == "" {
			paymentMethod = models.PaymentMethodGateway
		}
		if paymentMethod != models.PaymentMethodManual && paymentMethod != models.PaymentMethodGateway {
			respondWithError(c, http.StatusBadRequest, route, "invalid paymentMethod")
			return
		}

		paymentType := models.PaymentType(strings.TrimSpace(req.PaymentType))
		if paymentType == "" {
			paymentType = models.PaymentTypeFull
		}
		if paymentType != models.PaymentTypeFull && paymentType != models.PaymentTypeDelivery {
			respondWithError(c, http.StatusBadRequest, route, "invalid paymentType")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		var address *models.Address
		for i := range user.Addresses {
			if user.Addresses[i].ID == req.DeliveryAddressID {
				address = &user.Addresses[i]
				break
			}
		}
		if address == nil {
			respondWithError(c, http.StatusNotFound, route, "delivery address not found")
			return
		}

		cart, _, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if cart.IsEmpty() {
			respondWithError(c, http.StatusBadRequest, route, "cart is empty")
			return
		}

		now := time.Now()
		order := models.Order{
			OrderID:         uuid.NewString(),
			UserID:          userID,
			DeliveryAddress: address.Detail,
			DeliveryCharge:  ComputeDeliveryCharge(address.Detail),
			PaymentMethod:   paymentMethod,
			PaymentType:     paymentType,
			PaymentStatus:   models.PaymentStatusPending,
			OrderStatus:     models.OrderStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			items := make([]models.OrderLineItem, 0, len(cart.Items))

			for _, line := range cart.Items {
				var product models.Product
				err := db.Collection("products").FindOne(sessCtx, bson.M{
					"_id":       line.ProductID,
					"isDeleted": bson.M{"$ne": true},
				}).Decode(&product)
				if err == mongo.ErrNoDocuments {
					// A deleted product fails the whole order rather than
					// silently shipping a partial one.
					return nil, productNotFoundError{ProductID: line.ProductID}
				}
				if err != nil {
					return nil, err
				}

				if product.Stock < line.Quantity {
					return nil, outOfStockError{
						ProductID: line.ProductID,
						Available: product.Stock,
						Requested: line.Quantity,
					}
				}

				items = append(items, models.OrderLineItem{
					ProductID: line.ProductID,
					Name:      product.Name,
					Image:     product.ImagePath,
					UnitPrice: line.UnitPrice,
					Quantity:  line.Quantity,
					Variant:   line.Variant,
				})

				res, err := db.Collection("products").UpdateOne(sessCtx,
					bson.M{
						"_id":       line.ProductID,
						"isDeleted": bson.M{"$ne": true},
						"stock":     bson.M{"$gte": line.Quantity},
					},
					bson.M{"$inc": bson.M{"stock": -line.Quantity}},
				)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						ProductID: line.ProductID,
						Available: product.Stock,
						Requested: line.Quantity,
					}
				}
			}

			order.Items = items
			order.Recompute()
			paid, due := 0.0, order.PayableAmount()
			order.AmountPaid = paid
			order.AmountDue = due

			if _, err := db.Collection("orders").InsertOne(sessCtx, order); err != nil {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product out of stock",
					"productId": stockErr.ProductID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product not found",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Cart clearing is best-effort: the order stands even if this fails.
		if err := clearUserCart(ctx, db, userID); err != nil {
			log.Println("[ORDER] [ERROR] cart clear after order failed:", err)
		}

		publisher.PublishOrderEvent(order.OrderID, events.EventOrderCreated)

		log.Printf("[ORDER] [INFO] order %s created for user %s total=%.2f", order.OrderID, userID.Hex(), order.Total)
		success = true
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": order})
	}
}

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx,
			bson.M{"userId": userID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
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

		c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
	}
}

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:orderId"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{
			"orderId": c.Param("orderId"),
			"userId":  userID,
		}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
	}
}
