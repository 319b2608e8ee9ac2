package service

import (
	"context"
	"testing"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/mocks"
	"gymsync/backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPlanFixture() (*mocks.MockPlanRepository, *mocks.MockUserRepository, *mocks.MockPaymentRepository, PlanService) {
	planRepo := mocks.NewMockPlanRepository()
	userRepo := mocks.NewMockUserRepository()
	paymentRepo := mocks.NewMockPaymentRepository()
	svc := NewPlanService(planRepo, userRepo, paymentRepo)
	return planRepo, userRepo, paymentRepo, svc
}

func TestPlanCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid plan is stored with an empty feature list by default", func(t *testing.T) {
		_, _, _, svc := newPlanFixture()

		plan, err := svc.Create(ctx, PlanInput{Name: domain.PlanBasic, Price: 19.99, DurationInDays: 30})
		require.NoError(t, err)
		assert.False(t, plan.ID.IsZero())
		assert.NotNil(t, plan.Features)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		planRepo, _, _, svc := newPlanFixture()
		planRepo.CreateFunc = func(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
			return primitive.NilObjectID, repository.ErrConflict
		}

		_, err := svc.Create(ctx, PlanInput{Name: domain.PlanPremium, Price: 49.99, DurationInDays: 30})
		assert.ErrorIs(t, err, ErrPlanExists)
	})

	t.Run("unknown tier and non-positive numbers are invalid", func(t *testing.T) {
		_, _, _, svc := newPlanFixture()

		_, err := svc.Create(ctx, PlanInput{Name: "gold", Price: 10, DurationInDays: 30})
		assert.ErrorIs(t, err, ErrInvalidPlan)

		_, err = svc.Create(ctx, PlanInput{Name: domain.PlanBasic, Price: 0, DurationInDays: 30})
		assert.ErrorIs(t, err, ErrInvalidPlan)

		_, err = svc.Create(ctx, PlanInput{Name: domain.PlanBasic, Price: 10, DurationInDays: 0})
		assert.ErrorIs(t, err, ErrInvalidPlan)
	})
}

func TestPlanUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites the stored plan", func(t *testing.T) {
		planRepo, _, _, svc := newPlanFixture()
		stored := &domain.Plan{ID: primitive.NewObjectID(), Name: domain.PlanBasic, Price: 19.99, DurationInDays: 30}
		planRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
			return stored, nil
		}

		plan, err := svc.Update(ctx, stored.ID, PlanInput{Name: domain.PlanBasic, Price: 24.99, DurationInDays: 45})
		require.NoError(t, err)
		assert.Equal(t, 24.99, plan.Price)
		assert.Equal(t, 45, plan.DurationInDays)
	})

	t.Run("missing plan", func(t *testing.T) {
		_, _, _, svc := newPlanFixture()

		_, err := svc.Update(ctx, primitive.NewObjectID(), PlanInput{Name: domain.PlanBasic, Price: 10, DurationInDays: 30})
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}

func TestPlanDelete(t *testing.T) {
	ctx := context.Background()

	storedPlan := func(planRepo *mocks.MockPlanRepository) *domain.Plan {
		stored := &domain.Plan{ID: primitive.NewObjectID(), Name: domain.PlanBasic, Price: 19.99, DurationInDays: 30}
		planRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
			return stored, nil
		}
		return stored
	}

	t.Run("missing plan", func(t *testing.T) {
		_, _, _, svc := newPlanFixture()

		err := svc.Delete(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("a plan with subscribers on record cannot go", func(t *testing.T) {
		planRepo, userRepo, _, svc := newPlanFixture()
		plan := storedPlan(planRepo)
		userRepo.CountBySubscriptionPlanFunc = func(ctx context.Context, name domain.PlanName) (int64, error) {
			assert.Equal(t, plan.Name, name)
			return 3, nil
		}
		planRepo.DeleteFunc = func(ctx context.Context, id primitive.ObjectID) error {
			t.Fatal("a plan with subscribers must not be deleted")
			return nil
		}

		err := svc.Delete(ctx, plan.ID)
		assert.ErrorIs(t, err, ErrPlanInUse)
	})

	t.Run("a drained plan is removed", func(t *testing.T) {
		planRepo, _, _, svc := newPlanFixture()
		plan := storedPlan(planRepo)
		var deleted bool
		planRepo.DeleteFunc = func(ctx context.Context, id primitive.ObjectID) error {
			deleted = true
			return nil
		}

		err := svc.Delete(ctx, plan.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
	})
}

func TestPlanStats(t *testing.T) {
	ctx := context.Background()

	t.Run("the catalog carries live numbers per plan", func(t *testing.T) {
		planRepo, userRepo, paymentRepo, svc := newPlanFixture()
		stored := domain.Plan{ID: primitive.NewObjectID(), Name: domain.PlanPremium, Price: 49.99, DurationInDays: 30}
		planRepo.ListFunc = func(ctx context.Context) ([]domain.Plan, error) {
			return []domain.Plan{stored}, nil
		}
		userRepo.CountBySubscriptionPlanFunc = func(ctx context.Context, name domain.PlanName) (int64, error) {
			return 7, nil
		}
		userRepo.CountActiveBySubscriptionPlanFunc = func(ctx context.Context, name domain.PlanName, now time.Time) (int64, error) {
			return 5, nil
		}
		paymentRepo.SumAmountByPlanFunc = func(ctx context.Context, planID primitive.ObjectID, status domain.PaymentStatus) (float64, error) {
			assert.Equal(t, stored.ID, planID)
			assert.Equal(t, domain.PaymentSuccess, status)
			return 349.93, nil
		}

		details, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, int64(7), details[0].Subscribers)
		assert.Equal(t, int64(5), details[0].ActiveSubscribers)
		assert.Equal(t, 349.93, details[0].Revenue)
		assert.Nil(t, details[0].RecentSubscribers)
	})

	t.Run("the single-plan view adds the latest subscribers", func(t *testing.T) {
		planRepo, userRepo, _, svc := newPlanFixture()
		stored := &domain.Plan{ID: primitive.NewObjectID(), Name: domain.PlanPremium, Price: 49.99, DurationInDays: 30}
		planRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
			return stored, nil
		}
		userRepo.ListRecentSubscribersFunc = func(ctx context.Context, name domain.PlanName, limit int) ([]domain.User, error) {
			assert.Equal(t, recentSubscriberLimit, limit)
			return []domain.User{{ID: primitive.NewObjectID(), Role: domain.RoleMember, PasswordHash: "hash"}}, nil
		}

		details, err := svc.Get(ctx, stored.ID)
		require.NoError(t, err)
		require.Len(t, details.RecentSubscribers, 1)
		assert.Empty(t, details.RecentSubscribers[0].PasswordHash)
	})
}

func TestCheckAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("active subscription is reported as-is", func(t *testing.T) {
		_, userRepo, _, svc := newPlanFixture()
		validTill := time.Now().UTC().Add(48 * time.Hour)
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return &domain.User{
				ID:                    id,
				Role:                  domain.RoleMember,
				PasswordHash:          "hash",
				SubscriptionPlan:      domain.PlanPremium,
				SubscriptionValidTill: &validTill,
			}, nil
		}

		user, err := svc.CheckAccess(ctx, primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, domain.PlanPremium, user.SubscriptionPlan)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("lapsed subscription is cleared on read", func(t *testing.T) {
		_, userRepo, _, svc := newPlanFixture()
		expired := time.Now().UTC().Add(-time.Hour)
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return &domain.User{
				ID:                    id,
				Role:                  domain.RoleMember,
				SubscriptionPlan:      domain.PlanPremium,
				SubscriptionValidTill: &expired,
			}, nil
		}
		var cleared bool
		userRepo.ClearSubscriptionFunc = func(ctx context.Context, id primitive.ObjectID) error {
			cleared = true
			return nil
		}

		user, err := svc.CheckAccess(ctx, primitive.NewObjectID())
		require.NoError(t, err)
		assert.True(t, cleared)
		assert.Empty(t, user.SubscriptionPlan)
		assert.Nil(t, user.SubscriptionValidTill)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, _, svc := newPlanFixture()

		_, err := svc.CheckAccess(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
