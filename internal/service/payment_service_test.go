package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPaymentFixture() (*mocks.MockPaymentRepository, *mocks.MockPlanRepository, *mocks.MockUserRepository, PaymentService) {
	paymentRepo := mocks.NewMockPaymentRepository()
	planRepo := mocks.NewMockPlanRepository()
	userRepo := mocks.NewMockUserRepository()
	svc := NewPaymentService(paymentRepo, planRepo, userRepo)
	return paymentRepo, planRepo, userRepo, svc
}

func premiumPlan() *domain.Plan {
	return &domain.Plan{
		ID:             primitive.NewObjectID(),
		Name:           domain.PlanPremium,
		Price:          49.99,
		DurationInDays: 30,
	}
}

func TestProcessPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh subscription starts from the purchase time", func(t *testing.T) {
		_, planRepo, userRepo, svc := newPaymentFixture()
		plan := premiumPlan()
		member := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return member, nil
		}
		planRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
			return plan, nil
		}
		var appliedTill time.Time
		userRepo.SetSubscriptionFunc = func(ctx context.Context, id primitive.ObjectID, name domain.PlanName, validTill time.Time) error {
			appliedTill = validTill
			return nil
		}

		result, err := svc.ProcessPayment(ctx, member.ID, plan.ID, true, "")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentSuccess, result.Payment.PaymentStatus)
		assert.Equal(t, plan.Price, result.Payment.AmountPaid)
		assert.Equal(t, "mock", result.Payment.PaymentGateway)
		assert.True(t, strings.HasPrefix(result.Payment.TransactionID, "TXN-"))

		expected := time.Now().UTC().AddDate(0, 0, plan.DurationInDays)
		assert.WithinDuration(t, expected, appliedTill, 5*time.Second)
		assert.Equal(t, domain.PlanPremium, result.User.SubscriptionPlan)
	})

	t.Run("renewal extends from the running expiry", func(t *testing.T) {
		_, planRepo, userRepo, svc := newPaymentFixture()
		plan := premiumPlan()
		currentTill := time.Now().UTC().Add(10 * 24 * time.Hour)
		member := &domain.User{
			ID:                    primitive.NewObjectID(),
			Role:                  domain.RoleMember,
			SubscriptionPlan:      domain.PlanPremium,
			SubscriptionValidTill: &currentTill,
		}
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return member, nil
		}
		planRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
			return plan, nil
		}

		result, err := svc.ProcessPayment(ctx, member.ID, plan.ID, true, "mock")
		require.NoError(t, err)
		require.NotNil(t, result.Payment.ValidTill)
		assert.Equal(t, currentTill.AddDate(0, 0, plan.DurationInDays), *result.Payment.ValidTill)
	})

	t.Run("declined payment is recorded but leaves the subscription alone", func(t *testing.T) {
		paymentRepo, planRepo, userRepo, svc := newPaymentFixture()
		plan := premiumPlan()
		member := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return member, nil
		}
		planRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
			return plan, nil
		}
		var recorded *domain.Payment
		paymentRepo.CreateFunc = func(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
			recorded = payment
			id := primitive.NewObjectID()
			payment.ID = id
			return id, nil
		}
		userRepo.SetSubscriptionFunc = func(ctx context.Context, id primitive.ObjectID, name domain.PlanName, validTill time.Time) error {
			t.Fatal("subscription must not change on a declined payment")
			return nil
		}

		result, err := svc.ProcessPayment(ctx, member.ID, plan.ID, false, "mock")
		assert.ErrorIs(t, err, ErrPaymentFailed)
		require.NotNil(t, result)
		require.NotNil(t, recorded)
		assert.Equal(t, domain.PaymentFailed, recorded.PaymentStatus)
		assert.Nil(t, recorded.ValidTill)
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, _, userRepo, svc := newPaymentFixture()
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return &domain.User{ID: id, Role: domain.RoleMember}, nil
		}

		_, err := svc.ProcessPayment(ctx, primitive.NewObjectID(), primitive.NewObjectID(), true, "mock")
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	successPayment := func(age time.Duration) *domain.Payment {
		validTill := time.Now().UTC().AddDate(0, 0, 30)
		return &domain.Payment{
			ID:            primitive.NewObjectID(),
			UserID:        primitive.NewObjectID(),
			PaymentStatus: domain.PaymentSuccess,
			ValidTill:     &validTill,
			CreatedAt:     time.Now().UTC().Add(-age),
		}
	}

	t.Run("refund inside the window clears the matching subscription", func(t *testing.T) {
		paymentRepo, _, userRepo, svc := newPaymentFixture()
		payment := successPayment(time.Hour)
		paymentRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
			return payment, nil
		}
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return &domain.User{
				ID:                    payment.UserID,
				Role:                  domain.RoleMember,
				SubscriptionPlan:      domain.PlanPremium,
				SubscriptionValidTill: payment.ValidTill,
			}, nil
		}
		var cleared bool
		userRepo.ClearSubscriptionFunc = func(ctx context.Context, id primitive.ObjectID) error {
			cleared = true
			return nil
		}

		refunded, err := svc.Refund(ctx, payment.ID, "changed my mind")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentRefunded, refunded.PaymentStatus)
		assert.Equal(t, "changed my mind", refunded.RefundReason)
		assert.NotNil(t, refunded.RefundedAt)
		assert.True(t, cleared)
	})

	t.Run("a later purchase keeps its subscription", func(t *testing.T) {
		paymentRepo, _, userRepo, svc := newPaymentFixture()
		payment := successPayment(time.Hour)
		paymentRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
			return payment, nil
		}
		laterTill := payment.ValidTill.AddDate(0, 0, 30)
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return &domain.User{
				ID:                    payment.UserID,
				Role:                  domain.RoleMember,
				SubscriptionPlan:      domain.PlanPremium,
				SubscriptionValidTill: &laterTill,
			}, nil
		}
		userRepo.ClearSubscriptionFunc = func(ctx context.Context, id primitive.ObjectID) error {
			t.Fatal("subscription from a different payment must not be cleared")
			return nil
		}

		_, err := svc.Refund(ctx, payment.ID, "changed my mind")
		require.NoError(t, err)
	})

	t.Run("only successful payments are refundable", func(t *testing.T) {
		paymentRepo, _, _, svc := newPaymentFixture()
		payment := successPayment(time.Hour)
		payment.PaymentStatus = domain.PaymentFailed
		paymentRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
			return payment, nil
		}

		_, err := svc.Refund(ctx, payment.ID, "whatever")
		assert.ErrorIs(t, err, ErrRefundNotAllowed)
	})

	t.Run("window closes after seven days", func(t *testing.T) {
		paymentRepo, _, _, svc := newPaymentFixture()
		payment := successPayment(RefundWindow + time.Hour)
		paymentRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
			return payment, nil
		}

		_, err := svc.Refund(ctx, payment.ID, "too late")
		assert.ErrorIs(t, err, ErrRefundWindowExpired)
	})

	t.Run("unknown payment", func(t *testing.T) {
		_, _, _, svc := newPaymentFixture()

		_, err := svc.Refund(ctx, primitive.NewObjectID(), "nope")
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an unknown status", func(t *testing.T) {
		_, _, _, svc := newPaymentFixture()

		_, err := svc.UpdateStatus(ctx, primitive.NewObjectID(), "voided")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("a pending payment marked success grants the plan", func(t *testing.T) {
		paymentRepo, planRepo, userRepo, svc := newPaymentFixture()
		plan := premiumPlan()
		member := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		payment := &domain.Payment{
			ID:            primitive.NewObjectID(),
			UserID:        member.ID,
			PlanID:        plan.ID,
			PaymentStatus: domain.PaymentPending,
			CreatedAt:     time.Now().UTC(),
		}
		paymentRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
			return payment, nil
		}
		planRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
			return plan, nil
		}
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return member, nil
		}
		var appliedName domain.PlanName
		var appliedTill time.Time
		userRepo.SetSubscriptionFunc = func(ctx context.Context, id primitive.ObjectID, name domain.PlanName, validTill time.Time) error {
			appliedName = name
			appliedTill = validTill
			return nil
		}
		var updated *domain.Payment
		paymentRepo.UpdateFunc = func(ctx context.Context, p *domain.Payment) error {
			updated = p
			return nil
		}

		got, err := svc.UpdateStatus(ctx, payment.ID, domain.PaymentSuccess)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentSuccess, got.PaymentStatus)
		require.NotNil(t, updated)
		assert.Equal(t, domain.PlanPremium, appliedName)
		require.NotNil(t, got.ValidTill)
		expected := time.Now().UTC().AddDate(0, 0, plan.DurationInDays)
		assert.WithinDuration(t, expected, appliedTill, 5*time.Second)
	})

	t.Run("a success marked failed takes the matching subscription away", func(t *testing.T) {
		paymentRepo, _, userRepo, svc := newPaymentFixture()
		validTill := time.Now().UTC().AddDate(0, 0, 30)
		payment := &domain.Payment{
			ID:            primitive.NewObjectID(),
			UserID:        primitive.NewObjectID(),
			PaymentStatus: domain.PaymentSuccess,
			ValidTill:     &validTill,
		}
		paymentRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
			return payment, nil
		}
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return &domain.User{
				ID:                    payment.UserID,
				Role:                  domain.RoleMember,
				SubscriptionPlan:      domain.PlanPremium,
				SubscriptionValidTill: payment.ValidTill,
			}, nil
		}
		var cleared bool
		userRepo.ClearSubscriptionFunc = func(ctx context.Context, id primitive.ObjectID) error {
			cleared = true
			return nil
		}

		got, err := svc.UpdateStatus(ctx, payment.ID, domain.PaymentFailed)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentFailed, got.PaymentStatus)
		assert.True(t, cleared)
	})

	t.Run("a later purchase survives a retroactive failure", func(t *testing.T) {
		paymentRepo, _, userRepo, svc := newPaymentFixture()
		validTill := time.Now().UTC().AddDate(0, 0, 30)
		payment := &domain.Payment{
			ID:            primitive.NewObjectID(),
			UserID:        primitive.NewObjectID(),
			PaymentStatus: domain.PaymentSuccess,
			ValidTill:     &validTill,
		}
		paymentRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
			return payment, nil
		}
		laterTill := validTill.AddDate(0, 0, 30)
		userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
			return &domain.User{
				ID:                    payment.UserID,
				Role:                  domain.RoleMember,
				SubscriptionPlan:      domain.PlanPremium,
				SubscriptionValidTill: &laterTill,
			}, nil
		}
		userRepo.ClearSubscriptionFunc = func(ctx context.Context, id primitive.ObjectID) error {
			t.Fatal("subscription from a different payment must not be cleared")
			return nil
		}

		_, err := svc.UpdateStatus(ctx, payment.ID, domain.PaymentFailed)
		require.NoError(t, err)
	})

	t.Run("setting the current status is a no-op", func(t *testing.T) {
		paymentRepo, _, _, svc := newPaymentFixture()
		payment := &domain.Payment{ID: primitive.NewObjectID(), PaymentStatus: domain.PaymentPending}
		paymentRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
			return payment, nil
		}
		paymentRepo.UpdateFunc = func(ctx context.Context, p *domain.Payment) error {
			t.Fatal("an unchanged status must not be rewritten")
			return nil
		}

		got, err := svc.UpdateStatus(ctx, payment.ID, domain.PaymentPending)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
	})
}

func TestClearExpiredSubscriptions(t *testing.T) {
	_, _, userRepo, svc := newPaymentFixture()
	lapsed := domain.User{ID: primitive.NewObjectID(), Role: domain.RoleMember, PasswordHash: "hash"}
	userRepo.ListExpiredSubscribersFunc = func(ctx context.Context, now time.Time) ([]domain.User, error) {
		return []domain.User{lapsed}, nil
	}
	userRepo.ClearExpiredSubsFunc = func(ctx context.Context, now time.Time) (int64, error) {
		return 4, nil
	}

	expired, cleared, err := svc.ClearExpiredSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), cleared)
	require.Len(t, expired, 1)
	assert.Equal(t, lapsed.ID, expired[0].ID)
	assert.Empty(t, expired[0].PasswordHash)
}
