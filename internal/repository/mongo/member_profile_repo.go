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

const memberProfileCollectionName = "member_profiles"

// mongoMemberProfileRepository implements repository.MemberProfileRepository.
type mongoMemberProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoMemberProfileRepository creates a new member profile repository.
func NewMongoMemberProfileRepository(db *mongo.Database) repository.MemberProfileRepository {
	return &mongoMemberProfileRepository{
		collection: db.Collection(memberProfileCollectionName),
	}
}

// Upsert applies the partial update to the member's profile, creating the
// document on first write, and returns the resulting state.
func (r *mongoMemberProfileRepository) Upsert(ctx context.Context, userID primitive.ObjectID, update repository.MemberProfileUpdate) (*domain.MemberProfile, error) {
	now := time.Now().UTC()

	set := bson.M{"updatedAt": now}
	if update.Age != nil {
		set["age"] = *update.Age
	}
	if update.Weight != nil {
		set["weight"] = *update.Weight
	}
	if update.Height != nil {
		set["height"] = *update.Height
	}
	if update.Goal != nil {
		set["goal"] = *update.Goal
	}
	if update.PreferredTimeSlot != nil {
		set["preferredTimeSlot"] = update.PreferredTimeSlot
	}

	filter := bson.M{"user": userID}
	doc := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"user": userID, "createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var profile domain.MemberProfile
	if err := r.collection.FindOneAndUpdate(ctx, filter, doc, opts).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByUserID retrieves a member's profile document.
func (r *mongoMemberProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.MemberProfile, error) {
	var profile domain.MemberProfile
	err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// DeleteByUserID removes the profile. Missing documents are not an error,
// account removal must stay idempotent.
func (r *mongoMemberProfileRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"user": userID})
	return err
}

// FindBySlot returns profiles whose preferred slots contain the given entry.
func (r *mongoMemberProfileRepository) FindBySlot(ctx context.Context, day, from, to string) ([]domain.MemberProfile, error) {
	filter := bson.M{"preferredTimeSlot": bson.M{"$elemMatch": bson.M{
		"day":  day,
		"from": from,
		"to":   to,
	}}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []domain.MemberProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []domain.MemberProfile{}
	}
	return profiles, nil
}

// EnsureMemberProfileIndexes creates indexes for the member profile collection.
func EnsureMemberProfileIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := db.Collection(memberProfileCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
