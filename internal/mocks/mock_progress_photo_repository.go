package mocks

import (
	"context"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockProgressPhotoRepository implements repository.ProgressPhotoRepository.
type MockProgressPhotoRepository struct {
	CreateFunc           func(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error)
	GetByIDForMemberFunc func(ctx context.Context, id, memberID primitive.ObjectID) (*domain.ProgressPhoto, error)
	ListByMemberFunc     func(ctx context.Context, memberID primitive.ObjectID) ([]domain.ProgressPhoto, error)
	DeleteFunc           func(ctx context.Context, id primitive.ObjectID) error
}

func NewMockProgressPhotoRepository() *MockProgressPhotoRepository {
	return &MockProgressPhotoRepository{}
}

func (m *MockProgressPhotoRepository) Create(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, photo)
	}
	id := primitive.NewObjectID()
	photo.ID = id
	return id, nil
}

func (m *MockProgressPhotoRepository) GetByIDForMember(ctx context.Context, id, memberID primitive.ObjectID) (*domain.ProgressPhoto, error) {
	if m.GetByIDForMemberFunc != nil {
		return m.GetByIDForMemberFunc(ctx, id, memberID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockProgressPhotoRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.ProgressPhoto, error) {
	if m.ListByMemberFunc != nil {
		return m.ListByMemberFunc(ctx, memberID)
	}
	return []domain.ProgressPhoto{}, nil
}

func (m *MockProgressPhotoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

var _ repository.ProgressPhotoRepository = (*MockProgressPhotoRepository)(nil)
