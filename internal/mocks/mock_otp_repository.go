package mocks

import (
	"context"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockOTPRepository implements repository.OTPRepository for testing.
type MockOTPRepository struct {
	CreateFunc            func(ctx context.Context, otp *domain.OTP) (primitive.ObjectID, error)
	GetActiveByEmailFunc  func(ctx context.Context, email string, now time.Time) (*domain.OTP, error)
	GetCreatedSinceFunc   func(ctx context.Context, email string, since time.Time) (*domain.OTP, error)
	IncrementAttemptsFunc func(ctx context.Context, id primitive.ObjectID) (int, error)
	DeleteByEmailFunc     func(ctx context.Context, email string) error
}

func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

func (m *MockOTPRepository) Create(ctx context.Context, otp *domain.OTP) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, otp)
	}
	id := primitive.NewObjectID()
	otp.ID = id
	return id, nil
}

func (m *MockOTPRepository) GetActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.OTP, error) {
	if m.GetActiveByEmailFunc != nil {
		return m.GetActiveByEmailFunc(ctx, email, now)
	}
	return nil, repository.ErrNotFound
}

func (m *MockOTPRepository) GetCreatedSince(ctx context.Context, email string, since time.Time) (*domain.OTP, error) {
	if m.GetCreatedSinceFunc != nil {
		return m.GetCreatedSinceFunc(ctx, email, since)
	}
	return nil, repository.ErrNotFound
}

func (m *MockOTPRepository) IncrementAttempts(ctx context.Context, id primitive.ObjectID) (int, error) {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, id)
	}
	return 1, nil
}

func (m *MockOTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	if m.DeleteByEmailFunc != nil {
		return m.DeleteByEmailFunc(ctx, email)
	}
	return nil
}

var _ repository.OTPRepository = (*MockOTPRepository)(nil)
