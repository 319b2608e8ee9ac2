package mocks

import (
	"context"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockWorkoutPlanRepository implements repository.WorkoutPlanRepository.
type MockWorkoutPlanRepository struct {
	GetByMemberIDFunc      func(ctx context.Context, memberID primitive.ObjectID) (*domain.WorkoutPlan, error)
	UpsertFunc             func(ctx context.Context, memberID, trainerID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, bool, error)
	GetByIDForTrainerFunc  func(ctx context.Context, planID, trainerID primitive.ObjectID) (*domain.WorkoutPlan, error)
	UpdateExercisesFunc    func(ctx context.Context, planID, trainerID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, error)
	DeleteByIDForTrainerFn func(ctx context.Context, planID, trainerID primitive.ObjectID) error
	DeleteByMemberIDFunc   func(ctx context.Context, memberID primitive.ObjectID) error
}

func NewMockWorkoutPlanRepository() *MockWorkoutPlanRepository {
	return &MockWorkoutPlanRepository{}
}

func (m *MockWorkoutPlanRepository) GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	if m.GetByMemberIDFunc != nil {
		return m.GetByMemberIDFunc(ctx, memberID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockWorkoutPlanRepository) Upsert(ctx context.Context, memberID, trainerID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, bool, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, memberID, trainerID, exercises)
	}
	return &domain.WorkoutPlan{
		ID:        primitive.NewObjectID(),
		MemberID:  memberID,
		CreatedBy: trainerID,
		Exercises: exercises,
	}, true, nil
}

func (m *MockWorkoutPlanRepository) GetByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	if m.GetByIDForTrainerFunc != nil {
		return m.GetByIDForTrainerFunc(ctx, planID, trainerID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockWorkoutPlanRepository) UpdateExercises(ctx context.Context, planID, trainerID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, error) {
	if m.UpdateExercisesFunc != nil {
		return m.UpdateExercisesFunc(ctx, planID, trainerID, exercises)
	}
	return nil, repository.ErrNotFound
}

func (m *MockWorkoutPlanRepository) DeleteByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) error {
	if m.DeleteByIDForTrainerFn != nil {
		return m.DeleteByIDForTrainerFn(ctx, planID, trainerID)
	}
	return nil
}

func (m *MockWorkoutPlanRepository) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error {
	if m.DeleteByMemberIDFunc != nil {
		return m.DeleteByMemberIDFunc(ctx, memberID)
	}
	return nil
}

var _ repository.WorkoutPlanRepository = (*MockWorkoutPlanRepository)(nil)

// MockDietPlanRepository implements repository.DietPlanRepository.
type MockDietPlanRepository struct {
	GetByMemberIDFunc      func(ctx context.Context, memberID primitive.ObjectID) (*domain.DietPlan, error)
	UpsertFunc             func(ctx context.Context, memberID, trainerID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, bool, error)
	GetByIDForTrainerFunc  func(ctx context.Context, planID, trainerID primitive.ObjectID) (*domain.DietPlan, error)
	UpdateMealsFunc        func(ctx context.Context, planID, trainerID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, error)
	DeleteByIDForTrainerFn func(ctx context.Context, planID, trainerID primitive.ObjectID) error
	DeleteByMemberIDFunc   func(ctx context.Context, memberID primitive.ObjectID) error
}

func NewMockDietPlanRepository() *MockDietPlanRepository {
	return &MockDietPlanRepository{}
}

func (m *MockDietPlanRepository) GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.DietPlan, error) {
	if m.GetByMemberIDFunc != nil {
		return m.GetByMemberIDFunc(ctx, memberID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockDietPlanRepository) Upsert(ctx context.Context, memberID, trainerID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, bool, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, memberID, trainerID, meals)
	}
	return &domain.DietPlan{
		ID:        primitive.NewObjectID(),
		MemberID:  memberID,
		CreatedBy: trainerID,
		Meals:     meals,
	}, true, nil
}

func (m *MockDietPlanRepository) GetByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) (*domain.DietPlan, error) {
	if m.GetByIDForTrainerFunc != nil {
		return m.GetByIDForTrainerFunc(ctx, planID, trainerID)
	}
	return nil, repository.ErrNotFound
}

func (m *MockDietPlanRepository) UpdateMeals(ctx context.Context, planID, trainerID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, error) {
	if m.UpdateMealsFunc != nil {
		return m.UpdateMealsFunc(ctx, planID, trainerID, meals)
	}
	return nil, repository.ErrNotFound
}

func (m *MockDietPlanRepository) DeleteByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) error {
	if m.DeleteByIDForTrainerFn != nil {
		return m.DeleteByIDForTrainerFn(ctx, planID, trainerID)
	}
	return nil
}

func (m *MockDietPlanRepository) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error {
	if m.DeleteByMemberIDFunc != nil {
		return m.DeleteByMemberIDFunc(ctx, memberID)
	}
	return nil
}

var _ repository.DietPlanRepository = (*MockDietPlanRepository)(nil)
