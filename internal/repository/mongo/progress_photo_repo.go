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

const progressPhotoCollectionName = "progress_photos"

// mongoProgressPhotoRepository implements repository.ProgressPhotoRepository.
type mongoProgressPhotoRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressPhotoRepository creates a new progress photo repository.
func NewMongoProgressPhotoRepository(db *mongo.Database) repository.ProgressPhotoRepository {
	return &mongoProgressPhotoRepository{
		collection: db.Collection(progressPhotoCollectionName),
	}
}

// Create inserts photo metadata after the presigned upload URL is issued.
func (r *mongoProgressPhotoRepository) Create(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error) {
	if photo.MemberID.IsZero() || photo.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("photo member and object key are required")
	}

	photo.ID = primitive.NewObjectID()
	photo.CreatedAt = time.Now().UTC()
	if photo.TakenAt.IsZero() {
		photo.TakenAt = photo.CreatedAt
	}

	result, err := r.collection.InsertOne(ctx, photo)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByIDForMember retrieves a photo only if the member owns it.
func (r *mongoProgressPhotoRepository) GetByIDForMember(ctx context.Context, id, memberID primitive.ObjectID) (*domain.ProgressPhoto, error) {
	var photo domain.ProgressPhoto
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "member": memberID}).Decode(&photo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &photo, nil
}

// ListByMember returns the member's photos, newest shot first.
func (r *mongoProgressPhotoRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.ProgressPhoto, error) {
	opts := options.Find().SetSort(bson.D{{Key: "takenAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"member": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var photos []domain.ProgressPhoto
	if err = cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	if photos == nil {
		photos = []domain.ProgressPhoto{}
	}
	return photos, nil
}

// Delete removes photo metadata.
func (r *mongoProgressPhotoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgressPhotoIndexes creates indexes for the progress photos collection.
func EnsureProgressPhotoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "member", Value: 1}, {Key: "takenAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(progressPhotoCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
