package mocks

import (
	"context"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockChatRepository implements repository.ChatRepository. WithTransaction
// simply runs fn against the same context, which is what the services expect
// in tests: the transactional boundary collapses but the call order survives.
type MockChatRepository struct {
	WithTransactionFunc    func(ctx context.Context, fn func(ctx context.Context) error) error
	FindByParticipantsFunc func(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error)
	CreateFunc             func(ctx context.Context, chat *domain.Chat) (primitive.ObjectID, error)
	GetByIDForUserFunc     func(ctx context.Context, chatID, userID primitive.ObjectID) (*domain.Chat, error)
	ListByUserFunc         func(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]domain.Chat, int64, error)
	PushMessageFunc        func(ctx context.Context, chatID, messageID primitive.ObjectID, at time.Time) error
	PullMessageFunc        func(ctx context.Context, chatID, messageID primitive.ObjectID) error
	SetLastReadFunc        func(ctx context.Context, chatID, userID primitive.ObjectID, at time.Time) error
}

func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{}
}

func (m *MockChatRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

func (m *MockChatRepository) FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
	if m.FindByParticipantsFunc != nil {
		return m.FindByParticipantsFunc(ctx, a, b)
	}
	return nil, repository.ErrNotFound
}

func (m *MockChatRepository) Create(ctx context.Context, chat *domain.Chat) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, chat)
	}
	id := primitive.NewObjectID()
	chat.ID = id
	return id, nil
}

func (m *MockChatRepository) GetByIDForUser(ctx context.Context, chatID, userID primitive.ObjectID) (*domain.Chat, error) {
	if m.GetByIDForUserFunc != nil {
		return m.GetByIDForUserFunc(ctx, chatID, userID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockChatRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]domain.Chat, int64, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, page, limit)
	}
	return []domain.Chat{}, 0, nil
}

func (m *MockChatRepository) PushMessage(ctx context.Context, chatID, messageID primitive.ObjectID, at time.Time) error {
	if m.PushMessageFunc != nil {
		return m.PushMessageFunc(ctx, chatID, messageID, at)
	}
	return nil
}

func (m *MockChatRepository) PullMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error {
	if m.PullMessageFunc != nil {
		return m.PullMessageFunc(ctx, chatID, messageID)
	}
	return nil
}

func (m *MockChatRepository) SetLastRead(ctx context.Context, chatID, userID primitive.ObjectID, at time.Time) error {
	if m.SetLastReadFunc != nil {
		return m.SetLastReadFunc(ctx, chatID, userID, at)
	}
	return nil
}

var _ repository.ChatRepository = (*MockChatRepository)(nil)

// MockMessageRepository implements repository.MessageRepository.
type MockMessageRepository struct {
	CreateFunc           func(ctx context.Context, message *domain.Message) (primitive.ObjectID, error)
	GetByIDForSenderFunc func(ctx context.Context, messageID, senderID primitive.ObjectID) (*domain.Message, error)
	ListByChatFunc       func(ctx context.Context, chatID primitive.ObjectID, page, limit int) ([]domain.Message, int64, error)
	LatestByChatFunc     func(ctx context.Context, chatID primitive.ObjectID) (*domain.Message, error)
	DeleteFunc           func(ctx context.Context, id primitive.ObjectID) error
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	id := primitive.NewObjectID()
	message.ID = id
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	return id, nil
}

func (m *MockMessageRepository) GetByIDForSender(ctx context.Context, messageID, senderID primitive.ObjectID) (*domain.Message, error) {
	if m.GetByIDForSenderFunc != nil {
		return m.GetByIDForSenderFunc(ctx, messageID, senderID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockMessageRepository) ListByChat(ctx context.Context, chatID primitive.ObjectID, page, limit int) ([]domain.Message, int64, error) {
	if m.ListByChatFunc != nil {
		return m.ListByChatFunc(ctx, chatID, page, limit)
	}
	return []domain.Message{}, 0, nil
}

func (m *MockMessageRepository) LatestByChat(ctx context.Context, chatID primitive.ObjectID) (*domain.Message, error) {
	if m.LatestByChatFunc != nil {
		return m.LatestByChatFunc(ctx, chatID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockMessageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

var _ repository.MessageRepository = (*MockMessageRepository)(nil)
