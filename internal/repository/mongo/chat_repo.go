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

const chatCollectionName = "chats"

// mongoChatRepository implements repository.ChatRepository.
type mongoChatRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new chat repository. It keeps the database
// handle because WithTransaction needs the client for sessions.
func NewMongoChatRepository(db *mongo.Database) repository.ChatRepository {
	return &mongoChatRepository{
		db:         db,
		collection: db.Collection(chatCollectionName),
	}
}

// WithTransaction runs fn inside a mongo session. All repository calls made
// with the context passed to fn join the transaction.
func (r *mongoChatRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// FindByParticipants retrieves the single chat shared by the two users.
func (r *mongoChatRepository) FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
	return r.findOne(ctx, bson.M{"pairKey": domain.ChatPairKey(a, b)})
}

// Create inserts a new chat document.
func (r *mongoChatRepository) Create(ctx context.Context, chat *domain.Chat) (primitive.ObjectID, error) {
	if len(chat.Participants) != 2 {
		return primitive.NilObjectID, errors.New("chat requires exactly two participants")
	}

	chat.ID = primitive.NewObjectID()
	chat.PairKey = domain.ChatPairKey(chat.Participants[0], chat.Participants[1])
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	if chat.Messages == nil {
		chat.Messages = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, chat)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByIDForUser retrieves a chat only if the user participates in it.
func (r *mongoChatRepository) GetByIDForUser(ctx context.Context, chatID, userID primitive.ObjectID) (*domain.Chat, error) {
	return r.findOne(ctx, bson.M{"_id": chatID, "participants": userID})
}

func (r *mongoChatRepository) findOne(ctx context.Context, filter bson.M) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.collection.FindOne(ctx, filter).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// ListByUser returns a page of the user's chats, most recently active first.
func (r *mongoChatRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]domain.Chat, int64, error) {
	query := bson.M{"participants": userID}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var chats []domain.Chat
	if err = cursor.All(ctx, &chats); err != nil {
		return nil, 0, err
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	return chats, total, nil
}

// PushMessage appends a message reference and bumps the activity timestamp.
func (r *mongoChatRepository) PushMessage(ctx context.Context, chatID, messageID primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": chatID}
	update := bson.M{
		"$push": bson.M{"messages": messageID},
		"$set":  bson.M{"updatedAt": at},
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

// PullMessage removes a message reference after the message is deleted.
func (r *mongoChatRepository) PullMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error {
	filter := bson.M{"_id": chatID}
	update := bson.M{
		"$pull": bson.M{"messages": messageID},
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

// SetLastRead stamps when the user last opened the chat.
func (r *mongoChatRepository) SetLastRead(ctx context.Context, chatID, userID primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": chatID, "participants": userID}
	update := bson.M{"$set": bson.M{"lastRead." + userID.Hex(): at}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureChatIndexes creates indexes for the chats collection.
func EnsureChatIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			// One chat per member/trainer pair. The participants array is
			// multikey, so the unique constraint lives on the scalar pair key.
			Keys:    bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "participants", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(chatCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
