package mocks

import (
	"context"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockMemberProfileRepository implements repository.MemberProfileRepository.
type MockMemberProfileRepository struct {
	UpsertFunc         func(ctx context.Context, userID primitive.ObjectID, update repository.MemberProfileUpdate) (*domain.MemberProfile, error)
	GetByUserIDFunc    func(ctx context.Context, userID primitive.ObjectID) (*domain.MemberProfile, error)
	DeleteByUserIDFunc func(ctx context.Context, userID primitive.ObjectID) error
	FindBySlotFunc     func(ctx context.Context, day, from, to string) ([]domain.MemberProfile, error)
}

func NewMockMemberProfileRepository() *MockMemberProfileRepository {
	return &MockMemberProfileRepository{}
}

func (m *MockMemberProfileRepository) Upsert(ctx context.Context, userID primitive.ObjectID, update repository.MemberProfileUpdate) (*domain.MemberProfile, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, update)
	}
	return &domain.MemberProfile{UserID: userID}, nil
}

func (m *MockMemberProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.MemberProfile, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockMemberProfileRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	if m.DeleteByUserIDFunc != nil {
		return m.DeleteByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *MockMemberProfileRepository) FindBySlot(ctx context.Context, day, from, to string) ([]domain.MemberProfile, error) {
	if m.FindBySlotFunc != nil {
		return m.FindBySlotFunc(ctx, day, from, to)
	}
	return []domain.MemberProfile{}, nil
}

var _ repository.MemberProfileRepository = (*MockMemberProfileRepository)(nil)

// MockTrainerProfileRepository implements repository.TrainerProfileRepository.
type MockTrainerProfileRepository struct {
	UpsertFunc              func(ctx context.Context, userID primitive.ObjectID, update repository.TrainerProfileUpdate) (*domain.TrainerProfile, error)
	GetByUserIDFunc         func(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error)
	DeleteByUserIDFunc      func(ctx context.Context, userID primitive.ObjectID) error
	AddMemberFunc           func(ctx context.Context, trainerUserID, memberID primitive.ObjectID) error
	RemoveMemberFunc        func(ctx context.Context, trainerUserID, memberID primitive.ObjectID) error
	RemoveMemberFromAllFunc func(ctx context.Context, memberID primitive.ObjectID) error
	ListAllFunc             func(ctx context.Context) ([]domain.TrainerProfile, error)
	FindBySlotFunc          func(ctx context.Context, day, from, to string) ([]domain.TrainerProfile, error)
}

func NewMockTrainerProfileRepository() *MockTrainerProfileRepository {
	return &MockTrainerProfileRepository{}
}

func (m *MockTrainerProfileRepository) Upsert(ctx context.Context, userID primitive.ObjectID, update repository.TrainerProfileUpdate) (*domain.TrainerProfile, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, update)
	}
	return &domain.TrainerProfile{UserID: userID}, nil
}

func (m *MockTrainerProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockTrainerProfileRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	if m.DeleteByUserIDFunc != nil {
		return m.DeleteByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *MockTrainerProfileRepository) AddMember(ctx context.Context, trainerUserID, memberID primitive.ObjectID) error {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, trainerUserID, memberID)
	}
	return nil
}

func (m *MockTrainerProfileRepository) RemoveMember(ctx context.Context, trainerUserID, memberID primitive.ObjectID) error {
	if m.RemoveMemberFunc != nil {
		return m.RemoveMemberFunc(ctx, trainerUserID, memberID)
	}
	return nil
}

func (m *MockTrainerProfileRepository) RemoveMemberFromAll(ctx context.Context, memberID primitive.ObjectID) error {
	if m.RemoveMemberFromAllFunc != nil {
		return m.RemoveMemberFromAllFunc(ctx, memberID)
	}
	return nil
}

func (m *MockTrainerProfileRepository) ListAll(ctx context.Context) ([]domain.TrainerProfile, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []domain.TrainerProfile{}, nil
}

func (m *MockTrainerProfileRepository) FindBySlot(ctx context.Context, day, from, to string) ([]domain.TrainerProfile, error) {
	if m.FindBySlotFunc != nil {
		return m.FindBySlotFunc(ctx, day, from, to)
	}
	return []domain.TrainerProfile{}, nil
}

var _ repository.TrainerProfileRepository = (*MockTrainerProfileRepository)(nil)
