package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentAttemptInitiated = "initiated"
	PaymentAttemptPaid      = "paid"
	PaymentAttemptFailed    = "failed"
)

// Payment is the gateway-side ledger entry for an order. The gateway tran_id
// equals the orderId, so repeated init calls for the same order update one
// ledger document and bump Attempts rather than inserting a new row.
type Payment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID         string             `bson:"orderId" json:"orderId"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Provider        string             `bson:"provider" json:"provider"`
	PaymentType     PaymentType        `bson:"paymentType" json:"paymentType"`
	PayableAmount   float64            `bson:"payableAmount" json:"payableAmount"`
	PaidAmount      float64            `bson:"paidAmount" json:"paidAmount"`
	Currency        string             `bson:"currency" json:"currency"`
	Status          string             `bson:"status" json:"status"`
	ValID           string             `bson:"valId,omitempty" json:"valId,omitempty"`
	SessionKey      string             `bson:"sessionKey,omitempty" json:"sessionKey,omitempty"`
	Attempts        int                `bson:"attempts" json:"attempts"`
	GatewayResponse map[string]string  `bson:"gatewayResponse,omitempty" json:"gatewayResponse,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
