package service

import (
	"context"
	"errors"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrPlanExists   = errors.New("plan with this name already exists")
	ErrInvalidPlan  = errors.New("invalid plan data")
	ErrPlanInUse    = errors.New("plan still has subscribers and cannot be deleted")
)

// recentSubscriberLimit caps the subscriber preview on the plan detail view.
const recentSubscriberLimit = 5

// PlanInput carries the fields of a catalog plan for create/update.
type PlanInput struct {
	Name           domain.PlanName
	Price          float64
	DurationInDays int
	Features       []string
}

// PlanDetails is a catalog plan with its live subscription numbers. Revenue
// counts successful payments for the plan; the subscriber preview is only
// filled on the single-plan view.
type PlanDetails struct {
	Plan              *domain.Plan  `json:"plan"`
	Subscribers       int64         `json:"subscribers"`
	ActiveSubscribers int64         `json:"activeSubscribers"`
	Revenue           float64       `json:"revenue"`
	RecentSubscribers []domain.User `json:"recentSubscribers,omitempty"`
}

// PlanService manages the subscription plan catalog and access checks.
type PlanService interface {
	List(ctx context.Context) ([]PlanDetails, error)
	Get(ctx context.Context, id primitive.ObjectID) (*PlanDetails, error)
	Create(ctx context.Context, input PlanInput) (*domain.Plan, error)
	Update(ctx context.Context, id primitive.ObjectID, input PlanInput) (*domain.Plan, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CheckAccess(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	SubscriptionHistory(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]domain.Payment, int64, error)
}

type planService struct {
	planRepo    repository.PlanRepository
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanRepository, userRepo repository.UserRepository, paymentRepo repository.PaymentRepository) PlanService {
	return &planService{
		planRepo:    planRepo,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
	}
}

// planStats gathers the live numbers for one catalog plan.
func (s *planService) planStats(ctx context.Context, plan *domain.Plan) (PlanDetails, error) {
	details := PlanDetails{Plan: plan}

	var err error
	if details.Subscribers, err = s.userRepo.CountBySubscriptionPlan(ctx, plan.Name); err != nil {
		return details, err
	}
	if details.ActiveSubscribers, err = s.userRepo.CountActiveBySubscriptionPlan(ctx, plan.Name, nowUTC()); err != nil {
		return details, err
	}
	if details.Revenue, err = s.paymentRepo.SumAmountByPlan(ctx, plan.ID, domain.PaymentSuccess); err != nil {
		return details, err
	}
	return details, nil
}

// List returns the catalog, cheapest plan first, each with its live
// subscriber and revenue numbers.
func (s *planService) List(ctx context.Context) ([]PlanDetails, error) {
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]PlanDetails, 0, len(plans))
	for i := range plans {
		d, err := s.planStats(ctx, &plans[i])
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// Get returns one plan with its stats and the latest subscribers.
func (s *planService) Get(ctx context.Context, id primitive.ObjectID) (*PlanDetails, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	details, err := s.planStats(ctx, plan)
	if err != nil {
		return nil, err
	}

	recent, err := s.userRepo.ListRecentSubscribers(ctx, plan.Name, recentSubscriberLimit)
	if err != nil {
		return nil, err
	}
	for i := range recent {
		recent[i].PasswordHash = ""
	}
	details.RecentSubscribers = recent

	return &details, nil
}

func validatePlanInput(input PlanInput) error {
	if !input.Name.IsValid() {
		return ErrInvalidPlan
	}
	if input.Price <= 0 || input.DurationInDays <= 0 {
		return ErrInvalidPlan
	}
	return nil
}

// Create adds a plan to the catalog. Admin only, enforced at the route.
func (s *planService) Create(ctx context.Context, input PlanInput) (*domain.Plan, error) {
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		Name:           input.Name,
		Price:          input.Price,
		DurationInDays: input.DurationInDays,
		Features:       input.Features,
	}
	if plan.Features == nil {
		plan.Features = []string{}
	}

	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPlanExists
		}
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

// Update rewrites a catalog plan.
func (s *planService) Update(ctx context.Context, id primitive.ObjectID, input PlanInput) (*domain.Plan, error) {
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	plan.Name = input.Name
	plan.Price = input.Price
	plan.DurationInDays = input.DurationInDays
	plan.Features = input.Features
	if plan.Features == nil {
		plan.Features = []string{}
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPlanExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// Delete removes a plan from the catalog. A plan with subscribers on record
// is kept; it must drain before it can go.
func (s *planService) Delete(ctx context.Context, id primitive.ObjectID) error {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}

	subscribers, err := s.userRepo.CountBySubscriptionPlan(ctx, plan.Name)
	if err != nil {
		return err
	}
	if subscribers > 0 {
		return ErrPlanInUse
	}

	err = s.planRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

// CheckAccess returns the user with their subscription reconciled, so the
// caller can read the live plan state off the document.
func (s *planService) CheckAccess(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user, err = reconcileSubscription(ctx, s.userRepo, user)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// SubscriptionHistory pages through the user's payments, newest first.
func (s *planService) SubscriptionHistory(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]domain.Payment, int64, error) {
	return s.paymentRepo.List(ctx, repository.PaymentFilter{UserID: userID}, page, limit)
}
