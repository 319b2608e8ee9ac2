package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeSlot is a recurring weekly availability window, "HH:MM" 24h strings.
type TimeSlot struct {
	Day  string `bson:"day" json:"day"`   // Monday, Tuesday...
	From string `bson:"from" json:"from"` // e.g. "09:00"
	To   string `bson:"to" json:"to"`     // e.g. "11:00"
}

// MemberProfile is the 1:1 extension of a member User. Created lazily on the
// first profile update (upsert).
type MemberProfile struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"user" json:"user"` // Unique per user
	Age               *int               `bson:"age,omitempty" json:"age,omitempty"`
	Weight            *float64           `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Height            *float64           `bson:"height,omitempty" json:"height,omitempty"` // cm
	Goal              string             `bson:"goal,omitempty" json:"goal,omitempty"`     // e.g. "weight loss", "muscle gain"
	PreferredTimeSlot []TimeSlot         `bson:"preferredTimeSlot,omitempty" json:"preferredTimeSlot,omitempty"`
}

// TrainerProfile is the 1:1 extension of a trainer User. MembersAssigned is
// the reverse side of User.TrainerAssigned and must be mutated together with it.
type TrainerProfile struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID   `bson:"user" json:"user"` // Unique per user
	Expertise          []string             `bson:"expertise,omitempty" json:"expertise,omitempty"`
	AvailableTimeSlots []TimeSlot           `bson:"availableTimeSlots,omitempty" json:"availableTimeSlots,omitempty"`
	MembersAssigned    []primitive.ObjectID `bson:"membersAssigned,omitempty" json:"membersAssigned,omitempty"`
}
