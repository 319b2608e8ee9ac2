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

const messageCollectionName = "messages"

// mongoMessageRepository implements repository.MessageRepository.
type mongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new message repository.
func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		collection: db.Collection(messageCollectionName),
	}
}

// Create inserts a new message.
func (r *mongoMessageRepository) Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error) {
	if message.Content == "" || message.ChatID.IsZero() || message.SenderID.IsZero() {
		return primitive.NilObjectID, errors.New("message sender, chat, and content are required")
	}

	message.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	message.CreatedAt = now
	message.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByIDForSender retrieves a message only if the user sent it.
func (r *mongoMessageRepository) GetByIDForSender(ctx context.Context, messageID, senderID primitive.ObjectID) (*domain.Message, error) {
	var message domain.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": messageID, "sender": senderID}).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

// ListByChat returns a page of the chat's messages plus the unpaginated
// total. Sorted oldest first so history renders in order.
func (r *mongoMessageRepository) ListByChat(ctx context.Context, chatID primitive.ObjectID, page, limit int) ([]domain.Message, int64, error) {
	query := bson.M{"chat": chatID}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, 0, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, total, nil
}

// LatestByChat returns the newest message in a chat.
func (r *mongoMessageRepository) LatestByChat(ctx context.Context, chatID primitive.ObjectID) (*domain.Message, error) {
	var message domain.Message
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"chat": chatID}, opts).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

// Delete removes a message document.
func (r *mongoMessageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMessageIndexes creates indexes for the messages collection.
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chat", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "sender", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(messageCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
