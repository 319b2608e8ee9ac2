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
	ErrMemberNotAssigned   = errors.New("member is not assigned to this trainer")
	ErrFitnessPlanNotFound = errors.New("fitness plan not found")
	ErrEmptyPlan           = errors.New("plan must contain at least one entry")
)

// TrainerService covers the trainer-facing operations: the member roster and
// authoring workout/diet plans for assigned members.
type TrainerService interface {
	GetMembers(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	GetMemberPlans(ctx context.Context, trainerID, memberID primitive.ObjectID) (*MemberPlans, error)

	AssignWorkoutPlan(ctx context.Context, trainerID, memberID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, bool, error)
	UpdateWorkoutPlan(ctx context.Context, trainerID, planID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, error)
	DeleteWorkoutPlan(ctx context.Context, trainerID, planID primitive.ObjectID) error

	AssignDietPlan(ctx context.Context, trainerID, memberID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, bool, error)
	UpdateDietPlan(ctx context.Context, trainerID, planID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, error)
	DeleteDietPlan(ctx context.Context, trainerID, planID primitive.ObjectID) error

	GetProfile(ctx context.Context, trainerID primitive.ObjectID) (*domain.TrainerProfile, error)
	UpdateProfile(ctx context.Context, trainerID primitive.ObjectID, update repository.TrainerProfileUpdate) (*domain.TrainerProfile, error)
}

type trainerService struct {
	userRepo           repository.UserRepository
	trainerProfileRepo repository.TrainerProfileRepository
	workoutPlanRepo    repository.WorkoutPlanRepository
	dietPlanRepo       repository.DietPlanRepository
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(
	userRepo repository.UserRepository,
	trainerProfileRepo repository.TrainerProfileRepository,
	workoutPlanRepo repository.WorkoutPlanRepository,
	dietPlanRepo repository.DietPlanRepository,
) TrainerService {
	return &trainerService{
		userRepo:           userRepo,
		trainerProfileRepo: trainerProfileRepo,
		workoutPlanRepo:    workoutPlanRepo,
		dietPlanRepo:       dietPlanRepo,
	}
}

// GetMembers returns the trainer's assigned members.
func (s *trainerService) GetMembers(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	profile, err := s.trainerProfileRepo.GetByUserID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.User{}, nil
		}
		return nil, err
	}

	members, err := s.userRepo.ListByIDs(ctx, profile.MembersAssigned)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].PasswordHash = ""
	}
	return members, nil
}

// memberAssigned verifies the trainer currently coaches the member and
// returns the member document. Every plan operation runs through this.
func (s *trainerService) memberAssigned(ctx context.Context, trainerID, memberID primitive.ObjectID) (*domain.User, error) {
	member, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !member.IsMember() || member.TrainerAssigned == nil || *member.TrainerAssigned != trainerID {
		return nil, ErrMemberNotAssigned
	}
	return member, nil
}

// GetMemberPlans returns the plans the trainer's member currently has.
func (s *trainerService) GetMemberPlans(ctx context.Context, trainerID, memberID primitive.ObjectID) (*MemberPlans, error) {
	if _, err := s.memberAssigned(ctx, trainerID, memberID); err != nil {
		return nil, err
	}

	plans := &MemberPlans{}
	workout, err := s.workoutPlanRepo.GetByMemberID(ctx, memberID)
	if err == nil {
		plans.WorkoutPlan = workout
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	diet, err := s.dietPlanRepo.GetByMemberID(ctx, memberID)
	if err == nil {
		plans.DietPlan = diet
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return plans, nil
}

func validateExercises(exercises []domain.Exercise) error {
	if len(exercises) == 0 {
		return ErrEmptyPlan
	}
	for _, e := range exercises {
		if e.Name == "" {
			return errors.New("every exercise needs a name")
		}
	}
	return nil
}

func validateMeals(meals []domain.Meal) error {
	if len(meals) == 0 {
		return ErrEmptyPlan
	}
	for _, m := range meals {
		if m.Time == "" || len(m.FoodItems) == 0 {
			return errors.New("every meal needs a time and food items")
		}
	}
	return nil
}

// AssignWorkoutPlan creates or replaces the member's workout plan. The bool
// result reports whether the plan was newly created.
func (s *trainerService) AssignWorkoutPlan(ctx context.Context, trainerID, memberID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, bool, error) {
	if err := validateExercises(exercises); err != nil {
		return nil, false, err
	}
	member, err := s.memberAssigned(ctx, trainerID, memberID)
	if err != nil {
		return nil, false, err
	}
	// Plans are a premium feature; an assigned member on a lapsed or basic
	// subscription cannot receive one.
	if !member.HasPremiumAccess(nowUTC()) {
		return nil, false, ErrPremiumRequired
	}
	return s.workoutPlanRepo.Upsert(ctx, memberID, trainerID, exercises)
}

// UpdateWorkoutPlan rewrites the exercises of a plan the trainer authored.
func (s *trainerService) UpdateWorkoutPlan(ctx context.Context, trainerID, planID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, error) {
	if err := validateExercises(exercises); err != nil {
		return nil, err
	}

	plan, err := s.workoutPlanRepo.UpdateExercises(ctx, planID, trainerID, exercises)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFitnessPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// DeleteWorkoutPlan removes a plan the trainer authored.
func (s *trainerService) DeleteWorkoutPlan(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	err := s.workoutPlanRepo.DeleteByIDForTrainer(ctx, planID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFitnessPlanNotFound
	}
	return err
}

// AssignDietPlan creates or replaces the member's diet plan.
func (s *trainerService) AssignDietPlan(ctx context.Context, trainerID, memberID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, bool, error) {
	if err := validateMeals(meals); err != nil {
		return nil, false, err
	}
	member, err := s.memberAssigned(ctx, trainerID, memberID)
	if err != nil {
		return nil, false, err
	}
	if !member.HasPremiumAccess(nowUTC()) {
		return nil, false, ErrPremiumRequired
	}
	return s.dietPlanRepo.Upsert(ctx, memberID, trainerID, meals)
}

// UpdateDietPlan rewrites the meals of a plan the trainer authored.
func (s *trainerService) UpdateDietPlan(ctx context.Context, trainerID, planID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, error) {
	if err := validateMeals(meals); err != nil {
		return nil, err
	}

	plan, err := s.dietPlanRepo.UpdateMeals(ctx, planID, trainerID, meals)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFitnessPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// DeleteDietPlan removes a plan the trainer authored.
func (s *trainerService) DeleteDietPlan(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	err := s.dietPlanRepo.DeleteByIDForTrainer(ctx, planID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFitnessPlanNotFound
	}
	return err
}

// GetProfile returns the trainer's public profile, empty until first filled.
func (s *trainerService) GetProfile(ctx context.Context, trainerID primitive.ObjectID) (*domain.TrainerProfile, error) {
	profile, err := s.trainerProfileRepo.GetByUserID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.TrainerProfile{UserID: trainerID}, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies a partial update to the trainer's profile.
func (s *trainerService) UpdateProfile(ctx context.Context, trainerID primitive.ObjectID, update repository.TrainerProfileUpdate) (*domain.TrainerProfile, error) {
	if update.AvailableTimeSlots != nil {
		if err := validateSlots(update.AvailableTimeSlots); err != nil {
			return nil, err
		}
	}
	return s.trainerProfileRepo.Upsert(ctx, trainerID, update)
}
