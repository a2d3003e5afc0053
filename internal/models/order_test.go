package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOrderRecompute(t *testing.T) {
	order := &Order{
		Items: []OrderLineItem{
			{ProductID: primitive.NewObjectID(), UnitPrice: 100, Quantity: 4},
			{ProductID: primitive.NewObjectID(), UnitPrice: 25.5, Quantity: 2},
		},
		DeliveryCharge: 60,
	}
	order.Recompute()

	if order.Subtotal != 451 {
		t.Fatalf("expected subtotal 451, got %v", order.Subtotal)
	}
	if order.Total != order.Subtotal+order.DeliveryCharge {
		t.Fatalf("total %v != subtotal %v + delivery %v", order.Total, order.Subtotal, order.DeliveryCharge)
	}
}

func TestPayableAmountByPaymentType(t *testing.T) {
	order := &Order{Subtotal: 400, DeliveryCharge: 60, Total: 460}

	order.PaymentType = PaymentTypeFull
	if got := order.PayableAmount(); got != 460 {
		t.Fatalf("full payment payable = %v, want 460", got)
	}

	order.PaymentType = PaymentTypeDelivery
	if got := order.PayableAmount(); got != 60 {
		t.Fatalf("delivery payment payable = %v, want 60", got)
	}
}

func TestPaidSplit(t *testing.T) {
	order := &Order{Subtotal: 400, DeliveryCharge: 60, Total: 460}

	order.PaymentType = PaymentTypeFull
	paid, due := order.PaidSplit()
	if paid != 460 || due != 0 {
		t.Fatalf("full split = (%v, %v), want (460, 0)", paid, due)
	}

	order.PaymentType = PaymentTypeDelivery
	paid, due = order.PaidSplit()
	if paid != 60 || due != 400 {
		t.Fatalf("delivery split = (%v, %v), want (60, 400)", paid, due)
	}
}

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusPending, OrderStatusPending, true},
		{OrderStatusPending, OrderStatus("bogus"), false},
	}

	for _, tt := range tests {
		if got := ValidStatusTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidStatusTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
