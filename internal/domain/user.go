package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleMember  Role = "member"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleTrainer || r == RoleMember
}

// PlanName identifies a subscription tier. An empty value means the user
// has no subscription.
type PlanName string

const (
	PlanBasic   PlanName = "basic"
	PlanPremium PlanName = "premium"
)

// IsValid reports whether the plan name is one of the known tiers.
func (p PlanName) IsValid() bool {
	return p == PlanBasic || p == PlanPremium
}

// User represents any account in the system (admin, trainer or member).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique
	Phone        string             `bson:"phone" json:"phone"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	IsVerified   bool               `bson:"isVerified" json:"isVerified"`

	// --- Subscription (members only) ---
	SubscriptionPlan      PlanName   `bson:"subscriptionPlan,omitempty" json:"subscriptionPlan,omitempty"`
	SubscriptionValidTill *time.Time `bson:"subscriptionValidTill,omitempty" json:"subscriptionValidTill,omitempty"`

	// --- Assignment (members only) ---
	// The trainer currently responsible for this member. Kept in sync with
	// TrainerProfile.MembersAssigned on every assignment mutation.
	TrainerAssigned *primitive.ObjectID `bson:"trainerAssigned,omitempty" json:"trainerAssigned,omitempty"`

	LastLoginAt *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsMember() bool {
	return u.Role == RoleMember
}

// HasActiveSubscription reports whether the user's subscription is still
// valid at the given instant. Validity is strictly subscriptionValidTill > now.
func (u *User) HasActiveSubscription(now time.Time) bool {
	return u.SubscriptionPlan != "" && u.SubscriptionValidTill != nil && u.SubscriptionValidTill.After(now)
}

// HasPremiumAccess reports whether the user holds an unexpired premium
// subscription. Trainers and admins are not subscription-gated.
func (u *User) HasPremiumAccess(now time.Time) bool {
	if !u.IsMember() {
		return true
	}
	return u.SubscriptionPlan == PlanPremium && u.HasActiveSubscription(now)
}
