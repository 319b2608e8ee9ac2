package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"
	"gymsync/backend/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoTrainerAssigned    = errors.New("no trainer assigned")
	ErrSubscriptionRequired = errors.New("active subscription required")
	ErrInvalidTimeSlot      = errors.New("invalid time slot")
	ErrPhotoNotFound        = errors.New("progress photo not found")
	ErrInvalidContentType   = errors.New("unsupported photo content type")
)

var validSlotDays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

// TrainerInfo bundles a trainer's account with their public profile.
type TrainerInfo struct {
	Trainer *domain.User           `json:"trainer"`
	Profile *domain.TrainerProfile `json:"profile,omitempty"`
}

// MemberPlans bundles whatever plans the member's trainer has authored.
type MemberPlans struct {
	WorkoutPlan *domain.WorkoutPlan `json:"workoutPlan,omitempty"`
	DietPlan    *domain.DietPlan    `json:"dietPlan,omitempty"`
}

// PhotoUpload is the response to a progress photo upload request.
type PhotoUpload struct {
	Photo     *domain.ProgressPhoto `json:"photo"`
	UploadURL string                `json:"uploadUrl"`
}

// PhotoView is a stored photo paired with a temporary download URL.
type PhotoView struct {
	Photo       *domain.ProgressPhoto `json:"photo"`
	DownloadURL string                `json:"downloadUrl"`
}

// MemberService covers the member-facing operations: profile, trainer
// visibility, fitness plans and progress photos.
type MemberService interface {
	GetProfile(ctx context.Context, memberID primitive.ObjectID) (*domain.MemberProfile, error)
	UpdateProfile(ctx context.Context, memberID primitive.ObjectID, update repository.MemberProfileUpdate) (*domain.MemberProfile, error)
	SetPreferredTimeSlots(ctx context.Context, memberID primitive.ObjectID, slots []domain.TimeSlot) (*domain.MemberProfile, error)
	GetTrainer(ctx context.Context, memberID primitive.ObjectID) (*TrainerInfo, error)
	GetMyPlans(ctx context.Context, memberID primitive.ObjectID) (*MemberPlans, error)
	RequestTrainerChange(ctx context.Context, memberID primitive.ObjectID) error

	RequestPhotoUpload(ctx context.Context, memberID primitive.ObjectID, fileName, contentType string) (*PhotoUpload, error)
	ListPhotos(ctx context.Context, memberID primitive.ObjectID) ([]PhotoView, error)
	DeletePhoto(ctx context.Context, memberID, photoID primitive.ObjectID) error
}

type memberService struct {
	userRepo           repository.UserRepository
	memberProfileRepo  repository.MemberProfileRepository
	trainerProfileRepo repository.TrainerProfileRepository
	workoutPlanRepo    repository.WorkoutPlanRepository
	dietPlanRepo       repository.DietPlanRepository
	photoRepo          repository.ProgressPhotoRepository
	fileStorage        storage.FileStorage
}

// NewMemberService creates a new instance of memberService.
func NewMemberService(
	userRepo repository.UserRepository,
	memberProfileRepo repository.MemberProfileRepository,
	trainerProfileRepo repository.TrainerProfileRepository,
	workoutPlanRepo repository.WorkoutPlanRepository,
	dietPlanRepo repository.DietPlanRepository,
	photoRepo repository.ProgressPhotoRepository,
	fileStorage storage.FileStorage,
) MemberService {
	return &memberService{
		userRepo:           userRepo,
		memberProfileRepo:  memberProfileRepo,
		trainerProfileRepo: trainerProfileRepo,
		workoutPlanRepo:    workoutPlanRepo,
		dietPlanRepo:       dietPlanRepo,
		photoRepo:          photoRepo,
		fileStorage:        fileStorage,
	}
}

// GetProfile returns the member's fitness profile, which may not exist yet.
func (s *memberService) GetProfile(ctx context.Context, memberID primitive.ObjectID) (*domain.MemberProfile, error) {
	profile, err := s.memberProfileRepo.GetByUserID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Empty profile until the member fills it in.
			return &domain.MemberProfile{UserID: memberID}, nil
		}
		return nil, err
	}
	return profile, nil
}

func validateSlots(slots []domain.TimeSlot) error {
	for _, slot := range slots {
		if !validSlotDays[slot.Day] || slot.From == "" || slot.To == "" {
			return ErrInvalidTimeSlot
		}
	}
	return nil
}

// UpdateProfile applies a partial update to the member's fitness profile.
func (s *memberService) UpdateProfile(ctx context.Context, memberID primitive.ObjectID, update repository.MemberProfileUpdate) (*domain.MemberProfile, error) {
	if update.Age != nil && (*update.Age < 10 || *update.Age > 120) {
		return nil, errors.New("age out of range")
	}
	if update.Weight != nil && *update.Weight <= 0 {
		return nil, errors.New("weight must be positive")
	}
	if update.Height != nil && *update.Height <= 0 {
		return nil, errors.New("height must be positive")
	}
	if update.PreferredTimeSlot != nil {
		if err := validateSlots(update.PreferredTimeSlot); err != nil {
			return nil, err
		}
	}
	return s.memberProfileRepo.Upsert(ctx, memberID, update)
}

// SetPreferredTimeSlots replaces the member's preferred workout slots.
func (s *memberService) SetPreferredTimeSlots(ctx context.Context, memberID primitive.ObjectID, slots []domain.TimeSlot) (*domain.MemberProfile, error) {
	if slots == nil {
		slots = []domain.TimeSlot{}
	}
	if err := validateSlots(slots); err != nil {
		return nil, err
	}
	return s.memberProfileRepo.Upsert(ctx, memberID, repository.MemberProfileUpdate{PreferredTimeSlot: slots})
}

// GetTrainer returns the member's assigned trainer with their profile.
func (s *memberService) GetTrainer(ctx context.Context, memberID primitive.ObjectID) (*TrainerInfo, error) {
	member, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if member.TrainerAssigned == nil {
		return nil, ErrNoTrainerAssigned
	}

	trainer, err := s.userRepo.GetByID(ctx, *member.TrainerAssigned)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoTrainerAssigned
		}
		return nil, err
	}
	trainer.PasswordHash = ""

	info := &TrainerInfo{Trainer: trainer}
	profile, err := s.trainerProfileRepo.GetByUserID(ctx, trainer.ID)
	if err == nil {
		info.Profile = profile
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return info, nil
}

// GetMyPlans returns the workout and diet plans authored for the member.
// Either may be absent.
func (s *memberService) GetMyPlans(ctx context.Context, memberID primitive.ObjectID) (*MemberPlans, error) {
	member, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !member.HasPremiumAccess(nowUTC()) {
		return nil, ErrPremiumRequired
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

// RequestTrainerChange records the member's wish for a different trainer.
// The assignment stays in place until an admin acts on it.
func (s *memberService) RequestTrainerChange(ctx context.Context, memberID primitive.ObjectID) error {
	member, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if member.TrainerAssigned == nil {
		return ErrNoTrainerAssigned
	}

	log.Printf("INFO: member %s requested a trainer change from trainer %s", memberID.Hex(), member.TrainerAssigned.Hex())
	return nil
}

// --- Progress photos ---

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// RequestPhotoUpload records photo metadata and hands back a presigned PUT
// URL. The client uploads directly to the bucket.
func (s *memberService) RequestPhotoUpload(ctx context.Context, memberID primitive.ObjectID, fileName, contentType string) (*PhotoUpload, error) {
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return nil, ErrInvalidContentType
	}
	if fileName == "" {
		fileName = "photo" + ext
	}

	objectKey := fmt.Sprintf("progress/%s/%s%s", memberID.Hex(), uuid.NewString(), ext)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	photo := &domain.ProgressPhoto{
		MemberID:    memberID,
		S3ObjectKey: objectKey,
		FileName:    strings.TrimSpace(fileName),
		ContentType: contentType,
	}
	if _, err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, err
	}

	return &PhotoUpload{Photo: photo, UploadURL: uploadURL}, nil
}

// ListPhotos returns the member's photos with fresh download URLs.
func (s *memberService) ListPhotos(ctx context.Context, memberID primitive.ObjectID) ([]PhotoView, error) {
	photos, err := s.photoRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	views := make([]PhotoView, 0, len(photos))
	for i := range photos {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, photos[i].S3ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			// Skip rather than fail the whole listing on one bad object.
			log.Printf("WARN: presign failed for %s: %v", photos[i].S3ObjectKey, err)
			continue
		}
		views = append(views, PhotoView{Photo: &photos[i], DownloadURL: url})
	}
	return views, nil
}

// DeletePhoto removes the object and its metadata.
func (s *memberService) DeletePhoto(ctx context.Context, memberID, photoID primitive.ObjectID) error {
	photo, err := s.photoRepo.GetByIDForMember(ctx, photoID, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPhotoNotFound
		}
		return err
	}

	if err := s.fileStorage.DeleteObject(ctx, photo.S3ObjectKey); err != nil {
		log.Printf("WARN: failed to delete object %s: %v", photo.S3ObjectKey, err)
	}
	return s.photoRepo.Delete(ctx, photo.ID)
}
