package mocks

import (
	"context"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockPlanRepository implements repository.PlanRepository for testing.
type MockPlanRepository struct {
	CreateFunc    func(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByIDFunc   func(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetByNameFunc func(ctx context.Context, name domain.PlanName) (*domain.Plan, error)
	ListFunc      func(ctx context.Context) ([]domain.Plan, error)
	UpdateFunc    func(ctx context.Context, plan *domain.Plan) error
	DeleteFunc    func(ctx context.Context, id primitive.ObjectID) error
	CountFunc     func(ctx context.Context) (int64, error)
}

func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{}
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, plan)
	}
	id := primitive.NewObjectID()
	plan.ID = id
	return id, nil
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *MockPlanRepository) GetByName(ctx context.Context, name domain.PlanName) (*domain.Plan, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, repository.ErrNotFound
}

func (m *MockPlanRepository) List(ctx context.Context) ([]domain.Plan, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Plan{}, nil
}

func (m *MockPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, plan)
	}
	return nil
}

func (m *MockPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockPlanRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

var _ repository.PlanRepository = (*MockPlanRepository)(nil)
