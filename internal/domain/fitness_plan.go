package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is one entry of a workout plan.
type Exercise struct {
	Name  string `bson:"name" json:"name"`
	Sets  string `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps  string `bson:"reps,omitempty" json:"reps,omitempty"`
	Day   string `bson:"day,omitempty" json:"day,omitempty"` // Monday, etc.
	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutPlan is the single active workout plan for a member, authored by the
// member's assigned trainer. Re-assignment replaces the exercise list in place.
type WorkoutPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID  primitive.ObjectID `bson:"member" json:"member"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"` // trainer
	Exercises []Exercise         `bson:"exercises" json:"exercises"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Meal is one entry of a diet plan.
type Meal struct {
	Time      string   `bson:"time" json:"time"` // Breakfast, Lunch...
	FoodItems []string `bson:"foodItems" json:"foodItems"`
	Notes     string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// DietPlan mirrors WorkoutPlan for nutrition: one active plan per member.
type DietPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID  primitive.ObjectID `bson:"member" json:"member"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"` // trainer
	Meals     []Meal             `bson:"meals" json:"meals"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
