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

	"backend/internal/config"
	"backend/internal/events"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/sslcommerz"
)

// InitPayment opens a gateway checkout session for a pending order. The
// gateway tran_id is the orderId, so every callback can be resolved back to
// the order directly.
func InitPayment(db *mongo.Database, gateway *sslcommerz.Client, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:orderId/payment"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		orderID := c.Param("orderId")
		if orderID == "" {
			respondWithError(c, http.StatusBadRequest, route, "orderId is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 35*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{
			"orderId": orderID,
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

		if order.PaymentStatus != models.PaymentStatusPending {
			respondWithError(c, http.StatusBadRequest, route, "order is not awaiting payment")
			return
		}
		if order.PaymentMethod != models.PaymentMethodGateway {
			respondWithError(c, http.StatusBadRequest, route, "order does not use the payment gateway")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		payable := order.PayableAmount()
		session, err := gateway.InitiateSession(ctx, sslcommerz.InitRequest{
			Amount:        payable,
			Currency:      cfg.Currency,
			TranID:        order.OrderID,
			CustomerName:  user.Name,
			CustomerEmail: user.Email,
			CustomerPhone: user.Phone,
			Address:       order.DeliveryAddress,
			City:          order.DeliveryAddress,
			ProductName:   "order " + order.OrderID,
			SuccessURL:    cfg.BackendBaseURL + "/payment/success",
			FailURL:       cfg.BackendBaseURL + "/payment/fail",
			CancelURL:     cfg.BackendBaseURL + "/payment/cancel",
			IPNURL:        cfg.BackendBaseURL + "/payment/ipn",
		})
		if err != nil {
			log.Println("[PAYMENT] [ERROR] session init failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "payment gateway error")
			return
		}

		now := time.Now()
		_, err = db.Collection("payments").UpdateOne(ctx,
			bson.M{"orderId": order.OrderID},
			bson.M{
				"$set": bson.M{
					"userId":        userID,
					"provider":      "sslcommerz",
					"paymentType":   order.PaymentType,
					"payableAmount": payable,
					"currency":      cfg.Currency,
					"status":        models.PaymentAttemptInitiated,
					"sessionKey":    session.SessionKey,
					"updatedAt":     now,
				},
				"$inc":         bson.M{"attempts": 1},
				"$setOnInsert": bson.M{"createdAt": now},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			// The gateway session exists either way; the ledger catches up on
			// the next callback.
			log.Println("[PAYMENT] [ERROR] ledger upsert failed:", err)
		}

		log.Printf("[PAYMENT] [INFO] session opened order=%s amount=%.2f", order.OrderID, payable)
		c.JSON(http.StatusOK, gin.H{"success": true, "url": session.GatewayPageURL})
	}
}

// paidTransitionFilter matches an order only while its payment is still
// pending. That makes the pending-to-paid update single-shot: a replayed
// success callback or a duplicate IPN matches zero documents, so exactly one
// caller observes applied=true and runs the side effects.
func paidTransitionFilter(orderID string) bson.M {
	return bson.M{
		"orderId":       orderID,
		"paymentStatus": models.PaymentStatusPending,
	}
}

// paidOrderUpdate is the $set document applied on settlement.
func paidOrderUpdate(order models.Order, payload map[string]string) bson.M {
	paid, due := order.PaidSplit()
	return bson.M{
		"paymentStatus":  models.PaymentStatusPaid,
		"orderStatus":    models.OrderStatusProcessing,
		"amountPaid":     paid,
		"amountDue":      due,
		"paymentDetails": payload,
		"updatedAt":      time.Now(),
	}
}

// failedOrderFilter excludes paid orders, so a stray late fail or cancel
// callback can never downgrade a completed payment.
func failedOrderFilter(orderID string) bson.M {
	return bson.M{
		"orderId":       orderID,
		"paymentStatus": bson.M{"$ne": models.PaymentStatusPaid},
	}
}

func failedOrderUpdate(payload map[string]string) bson.M {
	return bson.M{
		"paymentStatus":  models.PaymentStatusFailed,
		"orderStatus":    models.OrderStatusCancelled,
		"paymentDetails": payload,
		"updatedAt":      time.Now(),
	}
}

// applyPaidTransition performs the single conditional pending-to-paid update.
func applyPaidTransition(ctx context.Context, db *mongo.Database, order models.Order, payload map[string]string) (bool, error) {
	res, err := db.Collection("orders").UpdateOne(ctx,
		paidTransitionFilter(order.OrderID),
		bson.M{"$set": paidOrderUpdate(order, payload)},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// markOrderFailed records a failed or cancelled payment.
func markOrderFailed(ctx context.Context, db *mongo.Database, orderID string, payload map[string]string) error {
	_, err := db.Collection("orders").UpdateOne(ctx,
		failedOrderFilter(orderID),
		bson.M{"$set": failedOrderUpdate(payload)},
	)
	return err
}

func settleLedger(ctx context.Context, db *mongo.Database, orderID, status, valID string, paidAmount float64, payload map[string]string) {
	update := bson.M{
		"status":          status,
		"gatewayResponse": payload,
		"updatedAt":       time.Now(),
	}
	if valID != "" {
		update["valId"] = valID
	}
	if paidAmount > 0 {
		update["paidAmount"] = paidAmount
	}
	if _, err := db.Collection("payments").UpdateOne(ctx, bson.M{"orderId": orderID}, bson.M{"$set": update}); err != nil {
		log.Println("[PAYMENT] [ERROR] ledger update failed:", err)
	}
}

func redirectTo(c *gin.Context, base, path, query string) {
	target := base + path
	if query != "" {
		target += "?" + query
	}
	c.Redirect(http.StatusFound, target)
}

// PaymentSuccess handles the gateway's success redirect. The payer's browser
// is mid-redirect, so every outcome ends in a frontend redirect, never JSON.
func PaymentSuccess(db *mongo.Database, gateway *sslcommerz.Client, publisher events.Publisher, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment/success"
		defer handlePanic(c, route)

		payload := callbackPayload(c)
		tranID := payload["tran_id"]
		if tranID == "" {
			middleware.RecordPaymentCallback("success", "bad_request")
			c.String(http.StatusBadRequest, "missing tran_id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 35*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"orderId": tranID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			log.Println("[PAYMENT] [ERROR] success callback for unknown order:", tranID)
			middleware.RecordPaymentCallback("success", "order_not_found")
			redirectTo(c, cfg.FrontendBaseURL, "/payment/failed", "reason=order_not_found")
			return
		}
		if err != nil {
			middleware.RecordPaymentCallback("success", "error")
			redirectTo(c, cfg.FrontendBaseURL, "/payment/failed", "reason=server_error")
			return
		}

		// Replayed callback after a completed payment: succeed without
		// reapplying any side effects.
		if order.PaymentStatus == models.PaymentStatusPaid {
			middleware.RecordPaymentCallback("success", "duplicate")
			redirectTo(c, cfg.FrontendBaseURL, "/payment/success", "orderId="+order.OrderID)
			return
		}

		valID := payload["val_id"]
		if valID == "" {
			log.Println("[PAYMENT] [ERROR] success callback without val_id:", tranID)
			if err := markOrderFailed(ctx, db, order.OrderID, payload); err != nil {
				log.Println("[PAYMENT] [ERROR] mark failed:", err)
			}
			settleLedger(ctx, db, order.OrderID, models.PaymentAttemptFailed, "", 0, payload)
			middleware.RecordPaymentCallback("success", "invalid")
			redirectTo(c, cfg.FrontendBaseURL, "/payment/failed", "orderId="+order.OrderID)
			return
		}

		validation, err := gateway.ValidateTransaction(ctx, valID)
		if err != nil {
			// Not confirmed, not failed: the order stays pending and the IPN
			// channel resolves it later.
			log.Println("[PAYMENT] [ERROR] validation unreachable:", err)
			middleware.RecordPaymentCallback("success", "gateway_error")
			redirectTo(c, cfg.FrontendBaseURL, "/payment/pending", "orderId="+order.OrderID)
			return
		}

		if !settlementMatchesOrder(validation, order) {
			log.Printf("[PAYMENT] [ERROR] validation rejected order=%s status=%s tran=%s amount=%s", order.OrderID, validation.Status, validation.TranID, validation.Amount)
			if err := markOrderFailed(ctx, db, order.OrderID, payload); err != nil {
				log.Println("[PAYMENT] [ERROR] mark failed:", err)
			}
			settleLedger(ctx, db, order.OrderID, models.PaymentAttemptFailed, valID, 0, payload)
			middleware.RecordPaymentCallback("success", "invalid")
			redirectTo(c, cfg.FrontendBaseURL, "/payment/failed", "orderId="+order.OrderID)
			return
		}

		applied, err := applyPaidTransition(ctx, db, order, payload)
		if err != nil {
			middleware.RecordPaymentCallback("success", "error")
			redirectTo(c, cfg.FrontendBaseURL, "/payment/failed", "reason=server_error")
			return
		}

		if applied {
			paid, _ := order.PaidSplit()
			settleLedger(ctx, db, order.OrderID, models.PaymentAttemptPaid, valID, paid, payload)
			if err := clearUserCart(ctx, db, order.UserID); err != nil {
				log.Println("[PAYMENT] [ERROR] cart clear after payment failed:", err)
			}
			publisher.PublishOrderEvent(order.OrderID, events.EventPaymentSettled)
			log.Printf("[PAYMENT] [INFO] order %s paid amount=%.2f", order.OrderID, paid)
		}

		middleware.RecordPaymentCallback("success", "paid")
		redirectTo(c, cfg.FrontendBaseURL, "/payment/success", "orderId="+order.OrderID)
	}
}

func paymentAbort(db *mongo.Database, publisher events.Publisher, cfg config.Config, channel, redirectPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "POST /payment/" + channel
		defer handlePanic(c, route)

		payload := callbackPayload(c)
		tranID := payload["tran_id"]
		if tranID == "" {
			middleware.RecordPaymentCallback(channel, "bad_request")
			c.String(http.StatusBadRequest, "missing tran_id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// No money moved, so no validation call is needed; the guard inside
		// markOrderFailed protects already-paid orders.
		if err := markOrderFailed(ctx, db, tranID, payload); err != nil {
			log.Printf("[PAYMENT] [ERROR] %s callback update failed: %v", channel, err)
		}
		settleLedger(ctx, db, tranID, models.PaymentAttemptFailed, "", 0, payload)
		publisher.PublishOrderEvent(tranID, events.EventPaymentFailed)

		middleware.RecordPaymentCallback(channel, "failed")
		redirectTo(c, cfg.FrontendBaseURL, redirectPath, "orderId="+tranID)
	}
}

// PaymentFail handles the gateway's declined redirect.
func PaymentFail(db *mongo.Database, publisher events.Publisher, cfg config.Config) gin.HandlerFunc {
	return paymentAbort(db, publisher, cfg, "fail", "/payment/failed")
}

// PaymentCancel handles the payer backing out. Same effect as a failure;
// only the redirect target differs.
func PaymentCancel(db *mongo.Database, publisher events.Publisher, cfg config.Config) gin.HandlerFunc {
	return paymentAbort(db, publisher, cfg, "cancel", "/payment/cancelled")
}

// GetPayments lists gateway ledger entries for the admin panel, newest
// activity first, optionally filtered to one order. This is the read side of
// the ledger the callbacks write: attempts, session keys and the raw gateway
// responses for reconciliation disputes.
func GetPayments(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/payments"
		defer handlePanic(c, route)

		filter := bson.M{}
		if orderID := strings.TrimSpace(c.Query("orderId")); orderID != "" {
			filter["orderId"] = orderID
		}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("payments").Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		payments := make([]models.Payment, 0)
		if err := cursor.All(ctx, &payments); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": payments})
	}
}

// PaymentIPN handles the gateway's out-of-band notification, which can
// arrive before, after, or instead of the success redirect. Everything
// except malformed input is acknowledged with 200: the provider retries
// non-200 responses indefinitely.
func PaymentIPN(db *mongo.Database, gateway *sslcommerz.Client, publisher events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment/ipn"
		defer handlePanic(c, route)

		payload := callbackPayload(c)
		tranID := payload["tran_id"]
		if tranID == "" {
			middleware.RecordPaymentCallback("ipn", "bad_request")
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing tran_id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 35*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"orderId": tranID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			log.Println("[PAYMENT] [ERROR] ipn for unknown order:", tranID)
			middleware.RecordPaymentCallback("ipn", "order_not_found")
			c.JSON(http.StatusOK, gin.H{"status": "received"})
			return
		}
		if err != nil {
			middleware.RecordPaymentCallback("ipn", "error")
			c.JSON(http.StatusOK, gin.H{"status": "received"})
			return
		}

		// The redirect handlers own the failure paths; the IPN only ever
		// confirms a still-pending payment.
		if order.PaymentStatus != models.PaymentStatusPending {
			middleware.RecordPaymentCallback("ipn", "noop")
			c.JSON(http.StatusOK, gin.H{"status": "received"})
			return
		}

		valID := payload["val_id"]
		if valID == "" {
			log.Println("[PAYMENT] [ERROR] ipn without val_id:", tranID)
			middleware.RecordPaymentCallback("ipn", "invalid")
			c.JSON(http.StatusOK, gin.H{"status": "received"})
			return
		}

		validation, err := gateway.ValidateTransaction(ctx, valID)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] ipn validation unreachable:", err)
			middleware.RecordPaymentCallback("ipn", "gateway_error")
			c.JSON(http.StatusOK, gin.H{"status": "received"})
			return
		}

		if !settlementMatchesOrder(validation, order) {
			log.Printf("[PAYMENT] [ERROR] ipn validation rejected order=%s status=%s tran=%s", order.OrderID, validation.Status, validation.TranID)
			middleware.RecordPaymentCallback("ipn", "invalid")
			c.JSON(http.StatusOK, gin.H{"status": "received"})
			return
		}

		applied, err := applyPaidTransition(ctx, db, order, payload)
		if err != nil {
			middleware.RecordPaymentCallback("ipn", "error")
			c.JSON(http.StatusOK, gin.H{"status": "received"})
			return
		}

		if applied {
			paid, _ := order.PaidSplit()
			settleLedger(ctx, db, order.OrderID, models.PaymentAttemptPaid, valID, paid, payload)
			if err := clearUserCart(ctx, db, order.UserID); err != nil {
				log.Println("[PAYMENT] [ERROR] cart clear after ipn failed:", err)
			}
			publisher.PublishOrderEvent(order.OrderID, events.EventPaymentSettled)
			log.Printf("[PAYMENT] [INFO] order %s paid via ipn", order.OrderID)
		}

		middleware.RecordPaymentCallback("ipn", "paid")
		c.JSON(http.StatusOK, gin.H{"status": "received"})
	}
}
