package service

import (
	"context"
	"errors"
	"log"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPhoneTaken       = errors.New("phone number already in use")
	ErrWrongPassword    = errors.New("current password is incorrect")
	ErrSamePassword     = errors.New("new password must differ from the current one")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// ProfileUpdate carries the fields a user may change on their own account.
// Nil pointers leave the stored value untouched.
type ProfileUpdate struct {
	Name  *string
	Phone *string
}

// UserService covers self-service account operations shared by every role.
type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, update ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID primitive.ObjectID) error
}

type userService struct {
	userRepo           repository.UserRepository
	memberProfileRepo  repository.MemberProfileRepository
	trainerProfileRepo repository.TrainerProfileRepository
	workoutPlanRepo    repository.WorkoutPlanRepository
	dietPlanRepo       repository.DietPlanRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(
	userRepo repository.UserRepository,
	memberProfileRepo repository.MemberProfileRepository,
	trainerProfileRepo repository.TrainerProfileRepository,
	workoutPlanRepo repository.WorkoutPlanRepository,
	dietPlanRepo repository.DietPlanRepository,
) UserService {
	return &userService{
		userRepo:           userRepo,
		memberProfileRepo:  memberProfileRepo,
		trainerProfileRepo: trainerProfileRepo,
		workoutPlanRepo:    workoutPlanRepo,
		dietPlanRepo:       dietPlanRepo,
	}
}

// GetProfile returns the account, lazily clearing a lapsed subscription so
// clients never see an expired plan as active.
func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
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

// UpdateProfile changes name and/or phone. Email is immutable, it anchors
// the verified identity.
func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if update.Name != nil && *update.Name != "" {
		user.Name = *update.Name
	}
	if update.Phone != nil && *update.Phone != "" && *update.Phone != user.Phone {
		taken, err := s.userRepo.PhoneInUse(ctx, *update.Phone, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrPhoneTaken
		}
		user.Phone = *update.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *userService) ChangePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}
	if currentPassword == newPassword {
		return ErrSamePassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	return s.userRepo.SetPassword(ctx, userID, string(hashed))
}

// DeleteAccount removes the user and everything hanging off the account.
func (s *userService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return cascadeDeleteUser(ctx, s.userRepo, s.memberProfileRepo, s.trainerProfileRepo, s.workoutPlanRepo, s.dietPlanRepo, user)
}

// cascadeDeleteUser tears down the account's dependent documents, then the
// user itself. Shared by self-service deletion and admin removal.
func cascadeDeleteUser(
	ctx context.Context,
	userRepo repository.UserRepository,
	memberProfileRepo repository.MemberProfileRepository,
	trainerProfileRepo repository.TrainerProfileRepository,
	workoutPlanRepo repository.WorkoutPlanRepository,
	dietPlanRepo repository.DietPlanRepository,
	user *domain.User,
) error {
	switch user.Role {
	case domain.RoleMember:
		if err := trainerProfileRepo.RemoveMemberFromAll(ctx, user.ID); err != nil {
			return err
		}
		if err := memberProfileRepo.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		if err := workoutPlanRepo.DeleteByMemberID(ctx, user.ID); err != nil {
			return err
		}
		if err := dietPlanRepo.DeleteByMemberID(ctx, user.ID); err != nil {
			return err
		}

	case domain.RoleTrainer:
		profile, err := trainerProfileRepo.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if profile != nil && len(profile.MembersAssigned) > 0 {
			cleared, err := userRepo.ClearTrainer(ctx, profile.MembersAssigned)
			if err != nil {
				return err
			}
			log.Printf("INFO: cleared trainer assignment for %d members of %s", cleared, user.Email)
		}
		if err := trainerProfileRepo.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
	}

	return userRepo.Delete(ctx, user.ID)
}

// reconcileSubscription clears a lapsed subscription off the document and
// returns the refreshed user. Expiry is observed on read, there is no
// background sweeper in the request path.
func reconcileSubscription(ctx context.Context, userRepo repository.UserRepository, user *domain.User) (*domain.User, error) {
	if user.SubscriptionPlan == "" || user.SubscriptionValidTill == nil {
		return user, nil
	}
	if user.HasActiveSubscription(nowUTC()) {
		return user, nil
	}

	if err := userRepo.ClearSubscription(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	user.SubscriptionPlan = ""
	user.SubscriptionValidTill = nil
	return user, nil
}
