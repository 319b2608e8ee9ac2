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

const otpCollectionName = "otps"

// mongoOTPRepository implements repository.OTPRepository.
type mongoOTPRepository struct {
	collection *mongo.Collection
}

// NewMongoOTPRepository creates a new OTP repository.
func NewMongoOTPRepository(db *mongo.Database) repository.OTPRepository {
	return &mongoOTPRepository{
		collection: db.Collection(otpCollectionName),
	}
}

// Create inserts a fresh code. Any previous codes for the email should be
// deleted first so only one is active.
func (r *mongoOTPRepository) Create(ctx context.Context, otp *domain.OTP) (primitive.ObjectID, error) {
	if otp.Email == "" || otp.Code == "" {
		return primitive.NilObjectID, errors.New("otp email and code are required")
	}

	otp.ID = primitive.NewObjectID()
	otp.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, otp)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetActiveByEmail returns the newest unverified, unexpired code for the email.
func (r *mongoOTPRepository) GetActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.OTP, error) {
	filter := bson.M{
		"email":     email,
		"verified":  false,
		"expiresAt": bson.M{"$gt": now},
	}
	return r.findNewest(ctx, filter)
}

// GetCreatedSince returns a code created at or after the given instant,
// regardless of state. Backs the resend throttle.
func (r *mongoOTPRepository) GetCreatedSince(ctx context.Context, email string, since time.Time) (*domain.OTP, error) {
	filter := bson.M{
		"email":     email,
		"createdAt": bson.M{"$gte": since},
	}
	return r.findNewest(ctx, filter)
}

func (r *mongoOTPRepository) findNewest(ctx context.Context, filter bson.M) (*domain.OTP, error) {
	var otp domain.OTP
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, filter, opts).Decode(&otp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &otp, nil
}

// IncrementAttempts bumps the failed attempt counter and returns the new value.
func (r *mongoOTPRepository) IncrementAttempts(ctx context.Context, id primitive.ObjectID) (int, error) {
	filter := bson.M{"_id": id}
	update := bson.M{"$inc": bson.M{"attempts": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var otp domain.OTP
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&otp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return otp.Attempts, nil
}

// DeleteByEmail purges every code stored for the email. Idempotent.
func (r *mongoOTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"email": email})
	return err
}

// EnsureOTPIndexes creates indexes for the otps collection, including the
// TTL index that reaps expired codes server-side.
func EnsureOTPIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	_, err := db.Collection(otpCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
