package mongo

import (
	"context"
	"errors"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutPlanCollectionName = "workout_plans"

// mongoWorkoutPlanRepository implements repository.WorkoutPlanRepository.
type mongoWorkoutPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutPlanRepository creates a new workout plan repository.
func NewMongoWorkoutPlanRepository(db *mongo.Database) repository.WorkoutPlanRepository {
	return &mongoWorkoutPlanRepository{
		collection: db.Collection(workoutPlanCollectionName),
	}
}

// GetByMemberID retrieves the member's single workout plan.
func (r *mongoWorkoutPlanRepository) GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	return r.findOne(ctx, bson.M{"member": memberID})
}

// Upsert replaces the member's workout plan, creating it on first write.
// The bool result reports whether a new document was created.
func (r *mongoWorkoutPlanRepository) Upsert(ctx context.Context, memberID, trainerID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, bool, error) {
	now := time.Now().UTC()
	filter := bson.M{"member": memberID}
	update := bson.M{
		"$set": bson.M{
			"exercises": exercises,
			"createdBy": trainerID,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"member": memberID, "createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var plan domain.WorkoutPlan
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&plan); err != nil {
		return nil, false, err
	}
	created := plan.CreatedAt.Equal(plan.UpdatedAt)
	return &plan, created, nil
}

// GetByIDForTrainer retrieves a plan only if the trainer authored it.
func (r *mongoWorkoutPlanRepository) GetByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	return r.findOne(ctx, bson.M{"_id": planID, "createdBy": trainerID})
}

// UpdateExercises rewrites the exercise list of an existing plan.
func (r *mongoWorkoutPlanRepository) UpdateExercises(ctx context.Context, planID, trainerID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, error) {
	filter := bson.M{"_id": planID, "createdBy": trainerID}
	update := bson.M{"$set": bson.M{
		"exercises": exercises,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var plan domain.WorkoutPlan
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// DeleteByIDForTrainer removes a plan only if the trainer authored it.
func (r *mongoWorkoutPlanRepository) DeleteByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": planID, "createdBy": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByMemberID removes the member's plan during account removal.
// Idempotent.
func (r *mongoWorkoutPlanRepository) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"member": memberID})
	return err
}

func (r *mongoWorkoutPlanRepository) findOne(ctx context.Context, filter bson.M) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// EnsureWorkoutPlanIndexes creates indexes for the workout plans collection.
func EnsureWorkoutPlanIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "member", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdBy", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(workoutPlanCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
