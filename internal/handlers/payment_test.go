package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/models"
	"backend/internal/sslcommerz"
)

func TestSettlementMatchesOrder(t *testing.T) {
	order := models.Order{
		OrderID:        "ord-a1b2c3",
		Subtotal:       400,
		DeliveryCharge: 60,
		Total:          460,
		PaymentType:    models.PaymentTypeFull,
	}

	tests := []struct {
		name   string
		status string
		tranID string
		amount string
		want   bool
	}{
		{"valid settlement", "VALID", "ord-a1b2c3", "460.00", true},
		{"validated settlement", "VALIDATED", "ord-a1b2c3", "460.00", true},
		// A val_id from a different order's checkout is genuine on its own
		// and may carry the same amount; it must not settle this order.
		{"other order same amount", "VALID", "ord-x9y8z7", "460.00", false},
		{"amount mismatch", "VALID", "ord-a1b2c3", "400.00", false},
		{"not settled", "INVALID_TRANSACTION", "ord-a1b2c3", "460.00", false},
		{"empty status", "", "ord-a1b2c3", "460.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := sslcommerz.ValidationResponse{
				Status: tt.status,
				TranID: tt.tranID,
				Amount: tt.amount,
			}
			if got := settlementMatchesOrder(resp, order); got != tt.want {
				t.Fatalf("settlementMatchesOrder(status=%q tran=%q amount=%q) = %v, want %v",
					tt.status, tt.tranID, tt.amount, got, tt.want)
			}
		})
	}
}

func TestSettlementMatchesOrderDeliveryOnly(t *testing.T) {
	order := models.Order{
		OrderID:        "ord-d4e5f6",
		Subtotal:       400,
		DeliveryCharge: 60,
		Total:          460,
		PaymentType:    models.PaymentTypeDelivery,
	}

	resp := sslcommerz.ValidationResponse{Status: "VALID", TranID: "ord-d4e5f6", Amount: "60.00"}
	if !settlementMatchesOrder(resp, order) {
		t.Fatal("expected delivery-charge settlement to match")
	}

	resp.Amount = "460.00"
	if settlementMatchesOrder(resp, order) {
		t.Fatal("full total must not settle a delivery-only order")
	}
}

// The pending-to-paid filter is what makes settlement single-shot: once an
// order is paid its paymentStatus no longer matches, so a replayed success
// callback or a duplicate IPN updates zero documents and skips the cart
// clear and the event publish.
func TestPaidTransitionFilter(t *testing.T) {
	filter := paidTransitionFilter("ord-a1b2c3")

	if got := filter["orderId"]; got != "ord-a1b2c3" {
		t.Fatalf("orderId = %v", got)
	}
	if got := filter["paymentStatus"]; got != models.PaymentStatusPending {
		t.Fatalf("paymentStatus = %v, want pending", got)
	}
	if len(filter) != 2 {
		t.Fatalf("unexpected filter fields: %v", filter)
	}
}

func TestPaidOrderUpdate(t *testing.T) {
	payload := map[string]string{"tran_id": "ord-a1b2c3", "val_id": "val-1"}

	full := models.Order{
		OrderID:        "ord-a1b2c3",
		Subtotal:       400,
		DeliveryCharge: 60,
		Total:          460,
		PaymentType:    models.PaymentTypeFull,
	}
	update := paidOrderUpdate(full, payload)
	if update["paymentStatus"] != models.PaymentStatusPaid {
		t.Fatalf("paymentStatus = %v", update["paymentStatus"])
	}
	if update["orderStatus"] != models.OrderStatusProcessing {
		t.Fatalf("orderStatus = %v", update["orderStatus"])
	}
	if update["amountPaid"] != 460.0 || update["amountDue"] != 0.0 {
		t.Fatalf("full payment split = %v / %v", update["amountPaid"], update["amountDue"])
	}

	delivery := full
	delivery.PaymentType = models.PaymentTypeDelivery
	update = paidOrderUpdate(delivery, payload)
	if update["amountPaid"] != 60.0 || update["amountDue"] != 400.0 {
		t.Fatalf("delivery payment split = %v / %v", update["amountPaid"], update["amountDue"])
	}
}

// Paid is absorbing: a late fail or cancel callback must never downgrade a
// completed payment.
func TestFailedOrderFilterExcludesPaid(t *testing.T) {
	filter := failedOrderFilter("ord-a1b2c3")

	if got := filter["orderId"]; got != "ord-a1b2c3" {
		t.Fatalf("orderId = %v", got)
	}
	guard, ok := filter["paymentStatus"].(bson.M)
	if !ok {
		t.Fatalf("paymentStatus guard = %T", filter["paymentStatus"])
	}
	if guard["$ne"] != models.PaymentStatusPaid {
		t.Fatalf("paymentStatus guard = %v, want $ne paid", guard)
	}
}

func TestFailedOrderUpdate(t *testing.T) {
	payload := map[string]string{"tran_id": "ord-a1b2c3"}
	update := failedOrderUpdate(payload)

	if update["paymentStatus"] != models.PaymentStatusFailed {
		t.Fatalf("paymentStatus = %v", update["paymentStatus"])
	}
	if update["orderStatus"] != models.OrderStatusCancelled {
		t.Fatalf("orderStatus = %v", update["orderStatus"])
	}
}
