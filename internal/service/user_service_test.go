package service

import (
	"context"
	"testing"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	userRepo           *mocks.MockUserRepository
	memberProfileRepo  *mocks.MockMemberProfileRepository
	trainerProfileRepo *mocks.MockTrainerProfileRepository
	workoutPlanRepo    *mocks.MockWorkoutPlanRepository
	dietPlanRepo       *mocks.MockDietPlanRepository
	svc                UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		userRepo:           mocks.NewMockUserRepository(),
		memberProfileRepo:  mocks.NewMockMemberProfileRepository(),
		trainerProfileRepo: mocks.NewMockTrainerProfileRepository(),
		workoutPlanRepo:    mocks.NewMockWorkoutPlanRepository(),
		dietPlanRepo:       mocks.NewMockDietPlanRepository(),
	}
	f.svc = NewUserService(f.userRepo, f.memberProfileRepo, f.trainerProfileRepo, f.workoutPlanRepo, f.dietPlanRepo)
	return f
}

func (f *userFixture) storeUser(user *domain.User) {
	f.userRepo.GetByIDFunc = func(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
		return user, nil
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	strPtr := func(s string) *string { return &s }

	t.Run("changes name and phone", func(t *testing.T) {
		f := newUserFixture()
		f.storeUser(&domain.User{ID: primitive.NewObjectID(), Name: "Jane", Phone: "+1555000111"})

		user, err := f.svc.UpdateProfile(ctx, primitive.NewObjectID(), ProfileUpdate{
			Name:  strPtr("Jane D."),
			Phone: strPtr("+1555000222"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane D.", user.Name)
		assert.Equal(t, "+1555000222", user.Phone)
	})

	t.Run("rejects a phone already in use", func(t *testing.T) {
		f := newUserFixture()
		f.storeUser(&domain.User{ID: primitive.NewObjectID(), Phone: "+1555000111"})
		f.userRepo.PhoneInUseFunc = func(ctx context.Context, phone string, excludeID primitive.ObjectID) (bool, error) {
			return true, nil
		}

		_, err := f.svc.UpdateProfile(ctx, primitive.NewObjectID(), ProfileUpdate{Phone: strPtr("+1555000999")})
		assert.ErrorIs(t, err, ErrPhoneTaken)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	withPassword := func(t *testing.T, password string) *userFixture {
		f := newUserFixture()
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		f.storeUser(&domain.User{ID: primitive.NewObjectID(), PasswordHash: string(hash)})
		return f
	}

	t.Run("stores a fresh hash", func(t *testing.T) {
		f := withPassword(t, "old-secret")
		var storedHash string
		f.userRepo.SetPasswordFunc = func(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
			storedHash = passwordHash
			return nil
		}

		err := f.svc.ChangePassword(ctx, primitive.NewObjectID(), "old-secret", "new-secret")
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("new-secret")))
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := withPassword(t, "old-secret")

		err := f.svc.ChangePassword(ctx, primitive.NewObjectID(), "not-it", "new-secret")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("new password must differ", func(t *testing.T) {
		f := withPassword(t, "old-secret")

		err := f.svc.ChangePassword(ctx, primitive.NewObjectID(), "old-secret", "old-secret")
		assert.ErrorIs(t, err, ErrSamePassword)
	})

	t.Run("short passwords are rejected before any lookup", func(t *testing.T) {
		f := newUserFixture()

		err := f.svc.ChangePassword(ctx, primitive.NewObjectID(), "old-secret", "tiny")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("member deletion cascades to profile and plans", func(t *testing.T) {
		f := newUserFixture()
		member := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		f.storeUser(member)

		var detached, profileGone, workoutGone, dietGone, userGone bool
		f.trainerProfileRepo.RemoveMemberFromAllFunc = func(ctx context.Context, memberID primitive.ObjectID) error {
			detached = true
			return nil
		}
		f.memberProfileRepo.DeleteByUserIDFunc = func(ctx context.Context, userID primitive.ObjectID) error {
			profileGone = true
			return nil
		}
		f.workoutPlanRepo.DeleteByMemberIDFunc = func(ctx context.Context, memberID primitive.ObjectID) error {
			workoutGone = true
			return nil
		}
		f.dietPlanRepo.DeleteByMemberIDFunc = func(ctx context.Context, memberID primitive.ObjectID) error {
			dietGone = true
			return nil
		}
		f.userRepo.DeleteFunc = func(ctx context.Context, id primitive.ObjectID) error {
			userGone = true
			return nil
		}

		err := f.svc.DeleteAccount(ctx, member.ID)
		require.NoError(t, err)
		assert.True(t, detached)
		assert.True(t, profileGone)
		assert.True(t, workoutGone)
		assert.True(t, dietGone)
		assert.True(t, userGone)
	})

	t.Run("trainer deletion releases the roster", func(t *testing.T) {
		f := newUserFixture()
		trainer := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleTrainer, Email: "coach@example.com"}
		f.storeUser(trainer)
		roster := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
		f.trainerProfileRepo.GetByUserIDFunc = func(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
			return &domain.TrainerProfile{UserID: userID, MembersAssigned: roster}, nil
		}
		var clearedIDs []primitive.ObjectID
		f.userRepo.ClearTrainerFunc = func(ctx context.Context, memberIDs []primitive.ObjectID) (int64, error) {
			clearedIDs = memberIDs
			return int64(len(memberIDs)), nil
		}

		err := f.svc.DeleteAccount(ctx, trainer.ID)
		require.NoError(t, err)
		assert.Equal(t, roster, clearedIDs)
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newUserFixture()

		err := f.svc.DeleteAccount(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
