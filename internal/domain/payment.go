package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus type for the payment lifecycle
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentSuccess  PaymentStatus = "success"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValid reports whether the status is one of the known payment states.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentSuccess, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment records one subscription purchase attempt. The gateway is a mock:
// a Payment row is written regardless of outcome, and only success mutates
// the user's subscription.
type Payment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user" json:"user"`
	PlanID         primitive.ObjectID `bson:"plan" json:"plan"`
	AmountPaid     float64            `bson:"amountPaid" json:"amountPaid"`
	PaymentStatus  PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	PaymentGateway string             `bson:"paymentGateway,omitempty" json:"paymentGateway,omitempty"`
	TransactionID  string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	ValidTill      *time.Time         `bson:"validTill,omitempty" json:"validTill,omitempty"`
	RefundReason   string             `bson:"refundReason,omitempty" json:"refundReason,omitempty"`
	RefundedAt     *time.Time         `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
