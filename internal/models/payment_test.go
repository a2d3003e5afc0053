package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The ledger is written with raw update documents and read back through
// Payment, so the struct's bson tags must line up with the keys the payment
// handlers write.
func TestPaymentDecodesLedgerDocument(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Now().Truncate(time.Millisecond)

	doc := bson.M{
		"_id":           primitive.NewObjectID(),
		"orderId":       "ord-a1b2c3",
		"userId":        userID,
		"provider":      "sslcommerz",
		"paymentType":   PaymentTypeFull,
		"payableAmount": 460.0,
		"paidAmount":    460.0,
		"currency":      "BDT",
		"status":        PaymentAttemptPaid,
		"valId":         "val-1",
		"sessionKey":    "sess-1",
		"attempts":      2,
		"gatewayResponse": bson.M{
			"tran_id": "ord-a1b2c3",
			"val_id":  "val-1",
		},
		"createdAt": now,
		"updatedAt": now,
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal ledger document: %v", err)
	}

	var payment Payment
	if err := bson.Unmarshal(raw, &payment); err != nil {
		t.Fatalf("unmarshal into Payment: %v", err)
	}

	if payment.OrderID != "ord-a1b2c3" {
		t.Fatalf("OrderID = %q", payment.OrderID)
	}
	if payment.UserID != userID {
		t.Fatalf("UserID = %v", payment.UserID)
	}
	if payment.PaymentType != PaymentTypeFull {
		t.Fatalf("PaymentType = %q", payment.PaymentType)
	}
	if payment.PayableAmount != 460 || payment.PaidAmount != 460 {
		t.Fatalf("amounts = %v / %v", payment.PayableAmount, payment.PaidAmount)
	}
	if payment.Status != PaymentAttemptPaid {
		t.Fatalf("Status = %q", payment.Status)
	}
	if payment.ValID != "val-1" || payment.SessionKey != "sess-1" {
		t.Fatalf("ValID = %q SessionKey = %q", payment.ValID, payment.SessionKey)
	}
	if payment.Attempts != 2 {
		t.Fatalf("Attempts = %d", payment.Attempts)
	}
	if payment.GatewayResponse["val_id"] != "val-1" {
		t.Fatalf("GatewayResponse = %v", payment.GatewayResponse)
	}
}
