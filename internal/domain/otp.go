package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTP lifetime and verification attempt cap.
const (
	OTPExpiry      = 10 * time.Minute
	OTPMaxAttempts = 3
)

// OTP is a short-lived email verification code. Rows auto-expire via a TTL
// index on expiresAt; attempts beyond OTPMaxAttempts force regeneration.
type OTP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Code      string             `bson:"otp" json:"-"` // 6 digits, never sent back to the client
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	Verified  bool               `bson:"verified" json:"verified"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the code is no longer usable at the given instant.
func (o *OTP) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}
