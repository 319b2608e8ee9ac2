package mocks

import (
	"context"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserRepository implements repository.UserRepository for testing. Each
// method delegates to its Func field when set; otherwise a harmless default
// applies (not found for lookups, success for mutations, empty for listings).
type MockUserRepository struct {
	CreateFunc            func(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByIDFunc           func(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	GetByEmailOrPhoneFunc func(ctx context.Context, email, phone string) (*domain.User, error)
	PhoneInUseFunc        func(ctx context.Context, phone string, excludeID primitive.ObjectID) (bool, error)
	UpdateFunc            func(ctx context.Context, user *domain.User) error
	SetPasswordFunc       func(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetLastLoginFunc      func(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetVerifiedFunc       func(ctx context.Context, id primitive.ObjectID, verified bool) error
	SetSubscriptionFunc   func(ctx context.Context, id primitive.ObjectID, plan domain.PlanName, validTill time.Time) error
	ClearSubscriptionFunc func(ctx context.Context, id primitive.ObjectID) error
	SetTrainerFunc        func(ctx context.Context, memberID, trainerID primitive.ObjectID) error
	ClearTrainerFunc      func(ctx context.Context, memberIDs []primitive.ObjectID) (int64, error)
	DeleteFunc            func(ctx context.Context, id primitive.ObjectID) error

	ListFunc                      func(ctx context.Context, filter repository.UserFilter, page, limit int) ([]domain.User, int64, error)
	ListBySubscriptionFunc        func(ctx context.Context, filter repository.SubscriptionFilter, page, limit int) ([]domain.User, int64, error)
	ListByIDsFunc                 func(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	ListByRoleFunc                func(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListMembersWithoutTrainerFunc func(ctx context.Context) ([]domain.User, error)
	ListVerifiedTrainersFunc      func(ctx context.Context, limit int) ([]domain.User, error)
	ListRecentSubscribersFunc     func(ctx context.Context, plan domain.PlanName, limit int) ([]domain.User, error)
	ListExpiredSubscribersFunc    func(ctx context.Context, now time.Time) ([]domain.User, error)
	ClearExpiredSubsFunc          func(ctx context.Context, now time.Time) (int64, error)

	CountFunc                         func(ctx context.Context) (int64, error)
	CountByRoleFunc                   func(ctx context.Context, role domain.Role) (int64, error)
	CountVerifiedFunc                 func(ctx context.Context, verified bool) (int64, error)
	CountActiveSubscriptionsFunc      func(ctx context.Context, now time.Time) (int64, error)
	CountBySubscriptionPlanFunc       func(ctx context.Context, plan domain.PlanName) (int64, error)
	CountActiveBySubscriptionPlanFunc func(ctx context.Context, plan domain.PlanName, now time.Time) (int64, error)
	SubscriptionPlanStatsFunc         func(ctx context.Context) ([]repository.PlanSubscriberCount, error)
}

// NewMockUserRepository creates a MockUserRepository with default behaviors.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	id := primitive.NewObjectID()
	user.ID = id
	return id, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error) {
	if m.GetByEmailOrPhoneFunc != nil {
		return m.GetByEmailOrPhoneFunc(ctx, email, phone)
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) PhoneInUse(ctx context.Context, phone string, excludeID primitive.ObjectID) (bool, error) {
	if m.PhoneInUseFunc != nil {
		return m.PhoneInUseFunc(ctx, phone, excludeID)
	}
	return false, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	if m.SetPasswordFunc != nil {
		return m.SetPasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	if m.SetLastLoginFunc != nil {
		return m.SetLastLoginFunc(ctx, id, at)
	}
	return nil
}

func (m *MockUserRepository) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	if m.SetVerifiedFunc != nil {
		return m.SetVerifiedFunc(ctx, id, verified)
	}
	return nil
}

func (m *MockUserRepository) SetSubscription(ctx context.Context, id primitive.ObjectID, plan domain.PlanName, validTill time.Time) error {
	if m.SetSubscriptionFunc != nil {
		return m.SetSubscriptionFunc(ctx, id, plan, validTill)
	}
	return nil
}

func (m *MockUserRepository) ClearSubscription(ctx context.Context, id primitive.ObjectID) error {
	if m.ClearSubscriptionFunc != nil {
		return m.ClearSubscriptionFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) SetTrainer(ctx context.Context, memberID, trainerID primitive.ObjectID) error {
	if m.SetTrainerFunc != nil {
		return m.SetTrainerFunc(ctx, memberID, trainerID)
	}
	return nil
}

func (m *MockUserRepository) ClearTrainer(ctx context.Context, memberIDs []primitive.ObjectID) (int64, error) {
	if m.ClearTrainerFunc != nil {
		return m.ClearTrainerFunc(ctx, memberIDs)
	}
	return int64(len(memberIDs)), nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter, page, limit int) ([]domain.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, page, limit)
	}
	return []domain.User{}, 0, nil
}

func (m *MockUserRepository) ListBySubscription(ctx context.Context, filter repository.SubscriptionFilter, page, limit int) ([]domain.User, int64, error) {
	if m.ListBySubscriptionFunc != nil {
		return m.ListBySubscriptionFunc(ctx, filter, page, limit)
	}
	return []domain.User{}, 0, nil
}

func (m *MockUserRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	if m.ListByIDsFunc != nil {
		return m.ListByIDsFunc(ctx, ids)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if m.ListByRoleFunc != nil {
		return m.ListByRoleFunc(ctx, role)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) ListMembersWithoutTrainer(ctx context.Context) ([]domain.User, error) {
	if m.ListMembersWithoutTrainerFunc != nil {
		return m.ListMembersWithoutTrainerFunc(ctx)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) ListVerifiedTrainers(ctx context.Context, limit int) ([]domain.User, error) {
	if m.ListVerifiedTrainersFunc != nil {
		return m.ListVerifiedTrainersFunc(ctx, limit)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) ListRecentSubscribers(ctx context.Context, plan domain.PlanName, limit int) ([]domain.User, error) {
	if m.ListRecentSubscribersFunc != nil {
		return m.ListRecentSubscribersFunc(ctx, plan, limit)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) ListExpiredSubscribers(ctx context.Context, now time.Time) ([]domain.User, error) {
	if m.ListExpiredSubscribersFunc != nil {
		return m.ListExpiredSubscribersFunc(ctx, now)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) ClearExpiredSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	if m.ClearExpiredSubsFunc != nil {
		return m.ClearExpiredSubsFunc(ctx, now)
	}
	return 0, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	if m.CountByRoleFunc != nil {
		return m.CountByRoleFunc(ctx, role)
	}
	return 0, nil
}

func (m *MockUserRepository) CountVerified(ctx context.Context, verified bool) (int64, error) {
	if m.CountVerifiedFunc != nil {
		return m.CountVerifiedFunc(ctx, verified)
	}
	return 0, nil
}

func (m *MockUserRepository) CountActiveSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	if m.CountActiveSubscriptionsFunc != nil {
		return m.CountActiveSubscriptionsFunc(ctx, now)
	}
	return 0, nil
}

func (m *MockUserRepository) CountBySubscriptionPlan(ctx context.Context, plan domain.PlanName) (int64, error) {
	if m.CountBySubscriptionPlanFunc != nil {
		return m.CountBySubscriptionPlanFunc(ctx, plan)
	}
	return 0, nil
}

func (m *MockUserRepository) CountActiveBySubscriptionPlan(ctx context.Context, plan domain.PlanName, now time.Time) (int64, error) {
	if m.CountActiveBySubscriptionPlanFunc != nil {
		return m.CountActiveBySubscriptionPlanFunc(ctx, plan, now)
	}
	return 0, nil
}

func (m *MockUserRepository) SubscriptionPlanStats(ctx context.Context) ([]repository.PlanSubscriberCount, error) {
	if m.SubscriptionPlanStatsFunc != nil {
		return m.SubscriptionPlanStatsFunc(ctx)
	}
	return []repository.PlanSubscriberCount{}, nil
}

// Compile-time interface compliance verification
var _ repository.UserRepository = (*MockUserRepository)(nil)
