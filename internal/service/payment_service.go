package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentFailed       = errors.New("payment was declined by the gateway")
	ErrRefundNotAllowed    = errors.New("only successful payments can be refunded")
	ErrRefundWindowExpired = errors.New("refund window has expired")
	ErrInvalidStatus       = errors.New("invalid payment status")
)

// RefundWindow is how long after purchase a refund may be issued.
const RefundWindow = 7 * 24 * time.Hour

// PaymentResult is what a purchase attempt hands back to the API layer.
type PaymentResult struct {
	Payment *domain.Payment
	User    *domain.User
}

// PaymentService processes mock gateway purchases, refunds and the admin
// payment views. The gateway boundary is simulated: the client reports the
// outcome and a payment row is written either way, but only success touches
// the subscription.
type PaymentService interface {
	ProcessPayment(ctx context.Context, userID, planID primitive.ObjectID, mockSuccess bool, gateway string) (*PaymentResult, error)
	GetForUser(ctx context.Context, paymentID, userID primitive.ObjectID) (*domain.Payment, error)
	History(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]domain.Payment, int64, error)

	List(ctx context.Context, filter repository.PaymentFilter, page, limit int) ([]domain.Payment, int64, error)
	UpdateStatus(ctx context.Context, paymentID primitive.ObjectID, status domain.PaymentStatus) (*domain.Payment, error)
	Refund(ctx context.Context, paymentID primitive.ObjectID, reason string) (*domain.Payment, error)
	MonthlyReport(ctx context.Context, start, end *time.Time) ([]repository.MonthlyPaymentReport, error)
	StatusStats(ctx context.Context, filter repository.PaymentFilter) ([]repository.PaymentStatusStat, error)
	ClearExpiredSubscriptions(ctx context.Context) ([]domain.User, int64, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	planRepo    repository.PlanRepository
	userRepo    repository.UserRepository
}

// NewPaymentService creates a new instance of paymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository, planRepo repository.PlanRepository, userRepo repository.UserRepository) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		planRepo:    planRepo,
		userRepo:    userRepo,
	}
}

// ProcessPayment records the purchase attempt and, on success, applies the
// subscription. An unexpired subscription extends from its current expiry
// rather than from the purchase time.
func (s *paymentService) ProcessPayment(ctx context.Context, userID, planID primitive.ObjectID, mockSuccess bool, gateway string) (*PaymentResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	if gateway == "" {
		gateway = "mock"
	}

	now := nowUTC()
	payment := &domain.Payment{
		UserID:         user.ID,
		PlanID:         plan.ID,
		AmountPaid:     plan.Price,
		PaymentGateway: gateway,
		TransactionID:  fmt.Sprintf("TXN-%s", uuid.NewString()),
	}

	if !mockSuccess {
		payment.PaymentStatus = domain.PaymentFailed
		if _, err := s.paymentRepo.Create(ctx, payment); err != nil {
			return nil, err
		}
		return &PaymentResult{Payment: payment, User: user}, ErrPaymentFailed
	}

	// Extend from whichever is later, now or the running expiry.
	start := now
	if user.HasActiveSubscription(now) {
		start = *user.SubscriptionValidTill
	}
	validTill := start.AddDate(0, 0, plan.DurationInDays)

	payment.PaymentStatus = domain.PaymentSuccess
	payment.ValidTill = &validTill
	if _, err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.userRepo.SetSubscription(ctx, user.ID, plan.Name, validTill); err != nil {
		return nil, err
	}
	user.SubscriptionPlan = plan.Name
	user.SubscriptionValidTill = &validTill
	user.PasswordHash = ""

	return &PaymentResult{Payment: payment, User: user}, nil
}

// GetForUser returns one payment, scoped to its owner.
func (s *paymentService) GetForUser(ctx context.Context, paymentID, userID primitive.ObjectID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByIDForUser(ctx, paymentID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// History pages through the user's own payments.
func (s *paymentService) History(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]domain.Payment, int64, error) {
	return s.paymentRepo.List(ctx, repository.PaymentFilter{UserID: userID}, page, limit)
}

// List pages through all payments for the admin view.
func (s *paymentService) List(ctx context.Context, filter repository.PaymentFilter, page, limit int) ([]domain.Payment, int64, error) {
	return s.paymentRepo.List(ctx, filter, page, limit)
}

// UpdateStatus force-sets a payment's status and keeps the subscription in
// step: a transition to success applies the purchased plan, a transition off
// success takes it away again.
func (s *paymentService) UpdateStatus(ctx context.Context, paymentID primitive.ObjectID, status domain.PaymentStatus) (*domain.Payment, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	previous := payment.PaymentStatus
	if previous == status {
		return payment, nil
	}

	if status == domain.PaymentSuccess {
		if err := s.applyPaymentSubscription(ctx, payment); err != nil {
			return nil, err
		}
	}

	payment.PaymentStatus = status
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	if previous == domain.PaymentSuccess && (status == domain.PaymentFailed || status == domain.PaymentRefunded) {
		if err := s.unwindPaymentSubscription(ctx, payment); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

// applyPaymentSubscription grants the plan a payment paid for, extending a
// running subscription from its current expiry.
func (s *paymentService) applyPaymentSubscription(ctx context.Context, payment *domain.Payment) error {
	plan, err := s.planRepo.GetByID(ctx, payment.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	user, err := s.userRepo.GetByID(ctx, payment.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if payment.ValidTill == nil {
		now := nowUTC()
		start := now
		if user.HasActiveSubscription(now) {
			start = *user.SubscriptionValidTill
		}
		validTill := start.AddDate(0, 0, plan.DurationInDays)
		payment.ValidTill = &validTill
	}
	return s.userRepo.SetSubscription(ctx, user.ID, plan.Name, *payment.ValidTill)
}

// unwindPaymentSubscription clears the subscription a payment granted, but
// only while the user is still on that exact expiry. A later purchase has a
// different one and survives.
func (s *paymentService) unwindPaymentSubscription(ctx context.Context, payment *domain.Payment) error {
	user, err := s.userRepo.GetByID(ctx, payment.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if payment.ValidTill == nil || user.SubscriptionValidTill == nil || !user.SubscriptionValidTill.Equal(*payment.ValidTill) {
		return nil
	}
	if err := s.userRepo.ClearSubscription(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// Refund marks a successful, recent payment as refunded and clears the
// subscription it granted if the user is still on it.
func (s *paymentService) Refund(ctx context.Context, paymentID primitive.ObjectID, reason string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.PaymentStatus != domain.PaymentSuccess {
		return nil, ErrRefundNotAllowed
	}
	now := nowUTC()
	if now.Sub(payment.CreatedAt) > RefundWindow {
		return nil, ErrRefundWindowExpired
	}

	payment.PaymentStatus = domain.PaymentRefunded
	payment.RefundReason = reason
	payment.RefundedAt = &now
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	// Only unwind the subscription this payment produced. A later purchase
	// has a different expiry and stays untouched.
	if err := s.unwindPaymentSubscription(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// MonthlyReport aggregates payments by month for the admin reports page.
func (s *paymentService) MonthlyReport(ctx context.Context, start, end *time.Time) ([]repository.MonthlyPaymentReport, error) {
	return s.paymentRepo.MonthlyReport(ctx, start, end)
}

// StatusStats aggregates matching payments by status.
func (s *paymentService) StatusStats(ctx context.Context, filter repository.PaymentFilter) ([]repository.PaymentStatusStat, error) {
	return s.paymentRepo.StatusStats(ctx, filter)
}

// ClearExpiredSubscriptions sweeps stale subscription fields off every
// lapsed member, reporting who was swept and how many documents changed.
func (s *paymentService) ClearExpiredSubscriptions(ctx context.Context) ([]domain.User, int64, error) {
	now := nowUTC()

	expired, err := s.userRepo.ListExpiredSubscribers(ctx, now)
	if err != nil {
		return nil, 0, err
	}
	for i := range expired {
		expired[i].PasswordHash = ""
	}

	cleared, err := s.userRepo.ClearExpiredSubscriptions(ctx, now)
	if err != nil {
		return nil, 0, err
	}
	return expired, cleared, nil
}
