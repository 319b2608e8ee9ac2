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

const dietPlanCollectionName = "diet_plans"

// mongoDietPlanRepository implements repository.DietPlanRepository.
type mongoDietPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoDietPlanRepository creates a new diet plan repository.
func NewMongoDietPlanRepository(db *mongo.Database) repository.DietPlanRepository {
	return &mongoDietPlanRepository{
		collection: db.Collection(dietPlanCollectionName),
	}
}

// GetByMemberID retrieves the member's single diet plan.
func (r *mongoDietPlanRepository) GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.DietPlan, error) {
	return r.findOne(ctx, bson.M{"member": memberID})
}

// Upsert replaces the member's diet plan, creating it on first write.
// The bool result reports whether a new document was created.
func (r *mongoDietPlanRepository) Upsert(ctx context.Context, memberID, trainerID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, bool, error) {
	now := time.Now().UTC()
	filter := bson.M{"member": memberID}
	update := bson.M{
		"$set": bson.M{
			"meals":     meals,
			"createdBy": trainerID,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"member": memberID, "createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var plan domain.DietPlan
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&plan); err != nil {
		return nil, false, err
	}
	created := plan.CreatedAt.Equal(plan.UpdatedAt)
	return &plan, created, nil
}

// GetByIDForTrainer retrieves a plan only if the trainer authored it.
func (r *mongoDietPlanRepository) GetByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) (*domain.DietPlan, error) {
	return r.findOne(ctx, bson.M{"_id": planID, "createdBy": trainerID})
}

// UpdateMeals rewrites the meal list of an existing plan.
func (r *mongoDietPlanRepository) UpdateMeals(ctx context.Context, planID, trainerID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, error) {
	filter := bson.M{"_id": planID, "createdBy": trainerID}
	update := bson.M{"$set": bson.M{
		"meals":     meals,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var plan domain.DietPlan
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
func (r *mongoDietPlanRepository) DeleteByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) error {
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
func (r *mongoDietPlanRepository) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"member": memberID})
	return err
}

func (r *mongoDietPlanRepository) findOne(ctx context.Context, filter bson.M) (*domain.DietPlan, error) {
	var plan domain.DietPlan
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// EnsureDietPlanIndexes creates indexes for the diet plans collection.
func EnsureDietPlanIndexes(ctx context.Context, db *mongo.Database) error {
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
	_, err := db.Collection(dietPlanCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
