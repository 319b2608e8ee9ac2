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

type trainerFixture struct {
	userRepo           *mocks.MockUserRepository
	trainerProfileRepo *mocks.MockTrainerProfileRepository
	workoutPlanRepo    *mocks.MockWorkoutPlanRepository
	dietPlanRepo       *mocks.MockDietPlanRepository
	svc                TrainerService
}

func newTrainerFixture() *trainerFixture {
	f := &trainerFixture{
		userRepo:           mocks.NewMockUserRepository(),
		trainerProfileRepo: mocks.NewMockTrainerProfileRepository(),
		workoutPlanRepo:    mocks.NewMockWorkoutPlanRepository(),
		dietPlanRepo:       mocks.NewMockDietPlanRepository(),
	}
	f.svc = NewTrainerService(f.userRepo, f.trainerProfileRepo, f.workoutPlanRepo, f.dietPlanRepo)
	return f
}

// assignedMember stores a premium member linked to the given trainer.
func (f *trainerFixture) assignedMember(trainerID primitive.ObjectID) *domain.User {
	validTill := time.Now().UTC().Add(24 * time.Hour)
	member := &domain.User{
		ID:                    primitive.NewObjectID(),
		Role:                  domain.RoleMember,
		TrainerAssigned:       &trainerID,
		SubscriptionPlan:      domain.PlanPremium,
		SubscriptionValidTill: &validTill,
	}
	f.userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
		if id == member.ID {
			return member, nil
		}
		return nil, repository.ErrNotFound
	}
	return member
}

func TestGetMembers(t *testing.T) {
	ctx := context.Background()
	trainerID := primitive.NewObjectID()

	t.Run("returns the roster", func(t *testing.T) {
		f := newTrainerFixture()
		memberID := primitive.NewObjectID()
		f.trainerProfileRepo.GetByUserIDFunc = func(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
			return &domain.TrainerProfile{UserID: userID, MembersAssigned: []primitive.ObjectID{memberID}}, nil
		}
		f.userRepo.ListByIDsFunc = func(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
			return []domain.User{{ID: memberID, Role: domain.RoleMember, PasswordHash: "hash"}}, nil
		}

		members, err := f.svc.GetMembers(ctx, trainerID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Empty(t, members[0].PasswordHash)
	})

	t.Run("no profile yet means an empty roster", func(t *testing.T) {
		f := newTrainerFixture()

		members, err := f.svc.GetMembers(ctx, trainerID)
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}

func TestAssignWorkoutPlan(t *testing.T) {
	ctx := context.Background()
	trainerID := primitive.NewObjectID()
	exercises := []domain.Exercise{{Name: "Squat", Sets: "5", Reps: "5"}}

	t.Run("creates a plan for an assigned member", func(t *testing.T) {
		f := newTrainerFixture()
		member := f.assignedMember(trainerID)

		plan, created, err := f.svc.AssignWorkoutPlan(ctx, trainerID, member.ID, exercises)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, member.ID, plan.MemberID)
		assert.Equal(t, trainerID, plan.CreatedBy)
	})

	t.Run("rejects a member coached by someone else", func(t *testing.T) {
		f := newTrainerFixture()
		member := f.assignedMember(primitive.NewObjectID())

		_, _, err := f.svc.AssignWorkoutPlan(ctx, trainerID, member.ID, exercises)
		assert.ErrorIs(t, err, ErrMemberNotAssigned)
	})

	t.Run("rejects an empty plan", func(t *testing.T) {
		f := newTrainerFixture()
		member := f.assignedMember(trainerID)

		_, _, err := f.svc.AssignWorkoutPlan(ctx, trainerID, member.ID, nil)
		assert.ErrorIs(t, err, ErrEmptyPlan)
	})

	t.Run("basic members cannot receive a plan", func(t *testing.T) {
		f := newTrainerFixture()
		member := f.assignedMember(trainerID)
		member.SubscriptionPlan = domain.PlanBasic

		_, _, err := f.svc.AssignWorkoutPlan(ctx, trainerID, member.ID, exercises)
		assert.ErrorIs(t, err, ErrPremiumRequired)
	})

	t.Run("a lapsed premium subscription blocks the plan", func(t *testing.T) {
		f := newTrainerFixture()
		member := f.assignedMember(trainerID)
		lapsed := time.Now().UTC().Add(-time.Hour)
		member.SubscriptionValidTill = &lapsed

		_, _, err := f.svc.AssignWorkoutPlan(ctx, trainerID, member.ID, exercises)
		assert.ErrorIs(t, err, ErrPremiumRequired)
	})
}

func TestUpdateWorkoutPlan(t *testing.T) {
	ctx := context.Background()
	trainerID := primitive.NewObjectID()
	exercises := []domain.Exercise{{Name: "Deadlift", Sets: "3", Reps: "5"}}

	t.Run("rewrites the exercises", func(t *testing.T) {
		f := newTrainerFixture()
		planID := primitive.NewObjectID()
		f.workoutPlanRepo.UpdateExercisesFunc = func(ctx context.Context, pID, tID primitive.ObjectID, ex []domain.Exercise) (*domain.WorkoutPlan, error) {
			return &domain.WorkoutPlan{ID: pID, CreatedBy: tID, Exercises: ex}, nil
		}

		plan, err := f.svc.UpdateWorkoutPlan(ctx, trainerID, planID, exercises)
		require.NoError(t, err)
		assert.Equal(t, exercises, plan.Exercises)
	})

	t.Run("another trainer's plan reads as not found", func(t *testing.T) {
		f := newTrainerFixture()

		_, err := f.svc.UpdateWorkoutPlan(ctx, trainerID, primitive.NewObjectID(), exercises)
		assert.ErrorIs(t, err, ErrFitnessPlanNotFound)
	})
}

func TestAssignDietPlan(t *testing.T) {
	ctx := context.Background()
	trainerID := primitive.NewObjectID()

	t.Run("meals need a time and food items", func(t *testing.T) {
		f := newTrainerFixture()
		member := f.assignedMember(trainerID)

		_, _, err := f.svc.AssignDietPlan(ctx, trainerID, member.ID, []domain.Meal{{Time: "08:00"}})
		assert.Error(t, err)
	})

	t.Run("creates the plan", func(t *testing.T) {
		f := newTrainerFixture()
		member := f.assignedMember(trainerID)

		plan, created, err := f.svc.AssignDietPlan(ctx, trainerID, member.ID, []domain.Meal{
			{Time: "08:00", FoodItems: []string{"oats", "eggs"}},
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, member.ID, plan.MemberID)
	})

	t.Run("diet plans are gated on premium too", func(t *testing.T) {
		f := newTrainerFixture()
		member := f.assignedMember(trainerID)
		member.SubscriptionPlan = domain.PlanBasic

		_, _, err := f.svc.AssignDietPlan(ctx, trainerID, member.ID, []domain.Meal{
			{Time: "08:00", FoodItems: []string{"oats"}},
		})
		assert.ErrorIs(t, err, ErrPremiumRequired)
	})
}

func TestDeleteFitnessPlans(t *testing.T) {
	ctx := context.Background()
	trainerID := primitive.NewObjectID()

	f := newTrainerFixture()
	f.workoutPlanRepo.DeleteByIDForTrainerFn = func(ctx context.Context, planID, tID primitive.ObjectID) error {
		return repository.ErrNotFound
	}
	err := f.svc.DeleteWorkoutPlan(ctx, trainerID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrFitnessPlanNotFound)

	err = f.svc.DeleteDietPlan(ctx, trainerID, primitive.NewObjectID())
	assert.NoError(t, err)
}

func TestTrainerUpdateProfile(t *testing.T) {
	ctx := context.Background()
	trainerID := primitive.NewObjectID()

	t.Run("stores expertise and availability", func(t *testing.T) {
		f := newTrainerFixture()
		var stored repository.TrainerProfileUpdate
		f.trainerProfileRepo.UpsertFunc = func(ctx context.Context, userID primitive.ObjectID, update repository.TrainerProfileUpdate) (*domain.TrainerProfile, error) {
			stored = update
			return &domain.TrainerProfile{UserID: userID}, nil
		}

		_, err := f.svc.UpdateProfile(ctx, trainerID, repository.TrainerProfileUpdate{
			Expertise:          []string{"strength"},
			AvailableTimeSlots: []domain.TimeSlot{{Day: "Tuesday", From: "07:00", To: "12:00"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"strength"}, stored.Expertise)
	})

	t.Run("availability slots are validated", func(t *testing.T) {
		f := newTrainerFixture()

		_, err := f.svc.UpdateProfile(ctx, trainerID, repository.TrainerProfileUpdate{
			AvailableTimeSlots: []domain.TimeSlot{{Day: "Tuesday", From: "", To: "12:00"}},
		})
		assert.ErrorIs(t, err, ErrInvalidTimeSlot)
	})
}
