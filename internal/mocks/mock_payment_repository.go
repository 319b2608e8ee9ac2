package mocks

import (
	"context"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockPaymentRepository implements repository.PaymentRepository for testing.
type MockPaymentRepository struct {
	CreateFunc          func(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByIDFunc         func(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error)
	GetByIDForUserFunc  func(ctx context.Context, id, userID primitive.ObjectID) (*domain.Payment, error)
	GetLatestByUserFunc func(ctx context.Context, userID primitive.ObjectID) (*domain.Payment, error)
	UpdateFunc          func(ctx context.Context, payment *domain.Payment) error
	ListFunc            func(ctx context.Context, filter repository.PaymentFilter, page, limit int) ([]domain.Payment, int64, error)
	ListRecentFunc      func(ctx context.Context, limit int) ([]domain.Payment, error)
	SumAmountFunc       func(ctx context.Context, filter repository.PaymentFilter) (float64, error)
	SumAmountByPlanFunc func(ctx context.Context, planID primitive.ObjectID, status domain.PaymentStatus) (float64, error)
	StatusStatsFunc     func(ctx context.Context, filter repository.PaymentFilter) ([]repository.PaymentStatusStat, error)
	MonthlyReportFunc   func(ctx context.Context, start, end *time.Time) ([]repository.MonthlyPaymentReport, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, payment)
	}
	id := primitive.NewObjectID()
	payment.ID = id
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	return id, nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Payment, error) {
	if m.GetByIDForUserFunc != nil {
		return m.GetByIDForUserFunc(ctx, id, userID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Payment, error) {
	if m.GetLatestByUserFunc != nil {
		return m.GetLatestByUserFunc(ctx, userID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, payment)
	}
	return nil
}

func (m *MockPaymentRepository) List(ctx context.Context, filter repository.PaymentFilter, page, limit int) ([]domain.Payment, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, page, limit)
	}
	return []domain.Payment{}, 0, nil
}

func (m *MockPaymentRepository) ListRecent(ctx context.Context, limit int) ([]domain.Payment, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return []domain.Payment{}, nil
}

func (m *MockPaymentRepository) SumAmount(ctx context.Context, filter repository.PaymentFilter) (float64, error) {
	if m.SumAmountFunc != nil {
		return m.SumAmountFunc(ctx, filter)
	}
	return 0, nil
}

func (m *MockPaymentRepository) SumAmountByPlan(ctx context.Context, planID primitive.ObjectID, status domain.PaymentStatus) (float64, error) {
	if m.SumAmountByPlanFunc != nil {
		return m.SumAmountByPlanFunc(ctx, planID, status)
	}
	return 0, nil
}

func (m *MockPaymentRepository) StatusStats(ctx context.Context, filter repository.PaymentFilter) ([]repository.PaymentStatusStat, error) {
	if m.StatusStatsFunc != nil {
		return m.StatusStatsFunc(ctx, filter)
	}
	return []repository.PaymentStatusStat{}, nil
}

func (m *MockPaymentRepository) MonthlyReport(ctx context.Context, start, end *time.Time) ([]repository.MonthlyPaymentReport, error) {
	if m.MonthlyReportFunc != nil {
		return m.MonthlyReportFunc(ctx, start, end)
	}
	return []repository.MonthlyPaymentReport{}, nil
}

var _ repository.PaymentRepository = (*MockPaymentRepository)(nil)
