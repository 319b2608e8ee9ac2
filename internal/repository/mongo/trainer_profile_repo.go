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

const trainerProfileCollectionName = "trainer_profiles"

// mongoTrainerProfileRepository implements repository.TrainerProfileRepository.
type mongoTrainerProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainerProfileRepository creates a new trainer profile repository.
func NewMongoTrainerProfileRepository(db *mongo.Database) repository.TrainerProfileRepository {
	return &mongoTrainerProfileRepository{
		collection: db.Collection(trainerProfileCollectionName),
	}
}

// Upsert applies the partial update to the trainer's profile, creating the
// document on first write, and returns the resulting state.
func (r *mongoTrainerProfileRepository) Upsert(ctx context.Context, userID primitive.ObjectID, update repository.TrainerProfileUpdate) (*domain.TrainerProfile, error) {
	now := time.Now().UTC()

	set := bson.M{"updatedAt": now}
	if update.Expertise != nil {
		set["expertise"] = update.Expertise
	}
	if update.AvailableTimeSlots != nil {
		set["availableTimeSlots"] = update.AvailableTimeSlots
	}

	filter := bson.M{"user": userID}
	doc := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"user": userID, "createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var profile domain.TrainerProfile
	if err := r.collection.FindOneAndUpdate(ctx, filter, doc, opts).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByUserID retrieves a trainer's profile document.
func (r *mongoTrainerProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
	var profile domain.TrainerProfile
	err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// DeleteByUserID removes the profile. Idempotent.
func (r *mongoTrainerProfileRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"user": userID})
	return err
}

// AddMember records the member in the trainer's roster. The profile document
// is created on demand so assignment works before the trainer has filled in
// their details.
func (r *mongoTrainerProfileRepository) AddMember(ctx context.Context, trainerUserID, memberID primitive.ObjectID) error {
	now := time.Now().UTC()
	filter := bson.M{"user": trainerUserID}
	update := bson.M{
		"$addToSet":    bson.M{"membersAssigned": memberID},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"user": trainerUserID, "createdAt": now},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// RemoveMember drops the member from the trainer's roster.
func (r *mongoTrainerProfileRepository) RemoveMember(ctx context.Context, trainerUserID, memberID primitive.ObjectID) error {
	filter := bson.M{"user": trainerUserID}
	update := bson.M{
		"$pull": bson.M{"membersAssigned": memberID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveMemberFromAll drops the member from every trainer roster. Used when
// a member account is removed.
func (r *mongoTrainerProfileRepository) RemoveMemberFromAll(ctx context.Context, memberID primitive.ObjectID) error {
	filter := bson.M{"membersAssigned": memberID}
	update := bson.M{
		"$pull": bson.M{"membersAssigned": memberID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// ListAll returns every trainer profile.
func (r *mongoTrainerProfileRepository) ListAll(ctx context.Context) ([]domain.TrainerProfile, error) {
	return r.findMany(ctx, bson.M{})
}

// FindBySlot returns profiles advertising availability for the given slot.
func (r *mongoTrainerProfileRepository) FindBySlot(ctx context.Context, day, from, to string) ([]domain.TrainerProfile, error) {
	filter := bson.M{"availableTimeSlots": bson.M{"$elemMatch": bson.M{
		"day":  day,
		"from": from,
		"to":   to,
	}}}
	return r.findMany(ctx, filter)
}

func (r *mongoTrainerProfileRepository) findMany(ctx context.Context, filter bson.M) ([]domain.TrainerProfile, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []domain.TrainerProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []domain.TrainerProfile{}
	}
	return profiles, nil
}

// EnsureTrainerProfileIndexes creates indexes for the trainer profile collection.
func EnsureTrainerProfileIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "membersAssigned", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(trainerProfileCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
