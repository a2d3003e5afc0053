package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string
type PaymentType string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	PaymentMethodManual  PaymentMethod = "manual"
	PaymentMethodGateway PaymentMethod = "gateway"

	// PaymentTypeFull settles the whole order total up front.
	// PaymentTypeDelivery settles only the delivery charge; the subtotal is
	// collected on delivery.
	PaymentTypeFull     PaymentType = "full"
	PaymentTypeDelivery PaymentType = "delivery"
)

// OrderLineItem is a frozen copy of a cart line at order-creation time,
// decoupled from later product edits or deletion.
type OrderLineItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	UnitPrice float64            `bson:"unitPrice" json:"unitPrice"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Variant   Variant            `bson:"variant" json:"variant"`
	LineTotal float64            `bson:"lineTotal" json:"lineTotal"`
}

// Order is the persisted order document. OrderID is the externally visible
// transaction identifier (also the gateway tran_id) and never changes once
// assigned; it is opaque so order volume cannot be inferred from it.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID         string             `bson:"orderId" json:"orderId"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderLineItem    `bson:"items" json:"items"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	DeliveryCharge  float64            `bson:"deliveryCharge" json:"deliveryCharge"`
	Total           float64            `bson:"total" json:"total"`
	AmountPaid      float64            `bson:"amountPaid" json:"amountPaid"`
	AmountDue       float64            `bson:"amountDue" json:"amountDue"`
	DeliveryAddress string             `bson:"deliveryAddress" json:"deliveryAddress"`
	PaymentMethod   PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	PaymentType     PaymentType        `bson:"paymentType" json:"paymentType"`
	PaymentStatus   PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus     OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	PaymentDetails  map[string]string  `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Recompute refreshes line totals, subtotal and total. Total is always
// subtotal + deliveryCharge.
func (o *Order) Recompute() {
	subtotal := 0.0
	for idx := range o.Items {
		item := &o.Items[idx]
		item.LineTotal = float64(item.Quantity) * item.UnitPrice
		subtotal += item.LineTotal
	}
	o.Subtotal = subtotal
	o.Total = subtotal + o.DeliveryCharge
}

// PayableAmount is the amount the gateway should collect for this order.
func (o *Order) PayableAmount() float64 {
	if o.PaymentType == PaymentTypeDelivery {
		return o.DeliveryCharge
	}
	return o.Total
}

// PaidSplit returns the amountPaid/amountDue pair after a successful gateway
// settlement. Delivery-only orders keep the subtotal due for collection on
// delivery.
func (o *Order) PaidSplit() (paid, due float64) {
	if o.PaymentType == PaymentTypeDelivery {
		return o.DeliveryCharge, o.Subtotal
	}
	return o.Total, 0
}

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
	OrderStatusCompleted:  4,
}

// ValidStatusTransition reports whether an admin status update is allowed.
// The normal flow only moves forward; cancelled is reachable from any
// non-terminal state, and terminal states never change.
func ValidStatusTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	if from == OrderStatusCancelled || from == OrderStatusCompleted {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}
