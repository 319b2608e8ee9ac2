package repository

import (
	"context"
	"time"

	"gymsync/backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserFilter narrows admin user listings. Search is a case-insensitive
// substring match over name, email and phone.
type UserFilter struct {
	Role       domain.Role
	IsVerified *bool
	Search     string
}

// SubscriptionFilter narrows admin subscription listings.
type SubscriptionFilter struct {
	Plan     domain.PlanName
	IsActive *bool
}

// PaymentFilter narrows payment listings and aggregations.
type PaymentFilter struct {
	UserID primitive.ObjectID
	Status domain.PaymentStatus
	Start  *time.Time
	End    *time.Time
}

// PlanSubscriberCount is one bucket of the per-plan subscriber aggregation.
type PlanSubscriberCount struct {
	Plan  domain.PlanName `bson:"_id" json:"plan"`
	Count int64           `bson:"count" json:"count"`
}

// PaymentStatusStat is one bucket of the per-status payment aggregation.
type PaymentStatusStat struct {
	Status      domain.PaymentStatus `bson:"_id" json:"status"`
	Count       int64                `bson:"count" json:"count"`
	TotalAmount float64              `bson:"totalAmount" json:"totalAmount"`
}

// StatusAmount is one status slice inside a monthly report row.
type StatusAmount struct {
	Status domain.PaymentStatus `bson:"status" json:"status"`
	Count  int64                `bson:"count" json:"count"`
	Amount float64              `bson:"amount" json:"amount"`
}

// MonthlyPaymentReport is one year/month bucket of the admin payment report.
type MonthlyPaymentReport struct {
	Year              int            `bson:"year" json:"year"`
	Month             int            `bson:"month" json:"month"`
	StatusBreakdown   []StatusAmount `bson:"statusBreakdown" json:"statusBreakdown"`
	TotalTransactions int64          `bson:"totalTransactions" json:"totalTransactions"`
	TotalRevenue      float64        `bson:"totalRevenue" json:"totalRevenue"`
}

// MemberProfileUpdate carries the mutable member profile fields; nil pointers
// (or a nil slice) leave the stored value untouched.
type MemberProfileUpdate struct {
	Age               *int
	Weight            *float64
	Height            *float64
	Goal              *string
	PreferredTimeSlot []domain.TimeSlot
}

// TrainerProfileUpdate mirrors MemberProfileUpdate for trainers.
type TrainerProfileUpdate struct {
	Expertise          []string
	AvailableTimeSlots []domain.TimeSlot
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error)
	PhoneInUse(ctx context.Context, phone string, excludeID primitive.ObjectID) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error
	SetSubscription(ctx context.Context, id primitive.ObjectID, plan domain.PlanName, validTill time.Time) error
	ClearSubscription(ctx context.Context, id primitive.ObjectID) error
	SetTrainer(ctx context.Context, memberID, trainerID primitive.ObjectID) error
	ClearTrainer(ctx context.Context, memberIDs []primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	List(ctx context.Context, filter UserFilter, page, limit int) ([]domain.User, int64, error)
	ListBySubscription(ctx context.Context, filter SubscriptionFilter, page, limit int) ([]domain.User, int64, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListMembersWithoutTrainer(ctx context.Context) ([]domain.User, error)
	ListVerifiedTrainers(ctx context.Context, limit int) ([]domain.User, error)
	ListRecentSubscribers(ctx context.Context, plan domain.PlanName, limit int) ([]domain.User, error)
	ListExpiredSubscribers(ctx context.Context, now time.Time) ([]domain.User, error)
	ClearExpiredSubscriptions(ctx context.Context, now time.Time) (int64, error)

	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	CountVerified(ctx context.Context, verified bool) (int64, error)
	CountActiveSubscriptions(ctx context.Context, now time.Time) (int64, error)
	CountBySubscriptionPlan(ctx context.Context, plan domain.PlanName) (int64, error)
	CountActiveBySubscriptionPlan(ctx context.Context, plan domain.PlanName, now time.Time) (int64, error)
	SubscriptionPlanStats(ctx context.Context) ([]PlanSubscriberCount, error)
}

// MemberProfileRepository defines the interface for member profile documents.
type MemberProfileRepository interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, update MemberProfileUpdate) (*domain.MemberProfile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.MemberProfile, error)
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
	FindBySlot(ctx context.Context, day, from, to string) ([]domain.MemberProfile, error)
}

// TrainerProfileRepository defines the interface for trainer profile documents.
type TrainerProfileRepository interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, update TrainerProfileUpdate) (*domain.TrainerProfile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error)
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
	AddMember(ctx context.Context, trainerUserID, memberID primitive.ObjectID) error
	RemoveMember(ctx context.Context, trainerUserID, memberID primitive.ObjectID) error
	RemoveMemberFromAll(ctx context.Context, memberID primitive.ObjectID) error
	ListAll(ctx context.Context) ([]domain.TrainerProfile, error)
	FindBySlot(ctx context.Context, day, from, to string) ([]domain.TrainerProfile, error)
}

// PlanRepository defines the interface for the subscription plan catalog.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetByName(ctx context.Context, name domain.PlanName) (*domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// PaymentRepository defines the interface for payment rows and their
// aggregations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error)
	GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Payment, error)
	GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
	List(ctx context.Context, filter PaymentFilter, page, limit int) ([]domain.Payment, int64, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Payment, error)
	SumAmount(ctx context.Context, filter PaymentFilter) (float64, error)
	SumAmountByPlan(ctx context.Context, planID primitive.ObjectID, status domain.PaymentStatus) (float64, error)
	StatusStats(ctx context.Context, filter PaymentFilter) ([]PaymentStatusStat, error)
	MonthlyReport(ctx context.Context, start, end *time.Time) ([]MonthlyPaymentReport, error)
}

// WorkoutPlanRepository defines the interface for workout plan documents.
// Upsert enforces one active plan per member.
type WorkoutPlanRepository interface {
	GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.WorkoutPlan, error)
	Upsert(ctx context.Context, memberID, trainerID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, bool, error)
	GetByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) (*domain.WorkoutPlan, error)
	UpdateExercises(ctx context.Context, planID, trainerID primitive.ObjectID, exercises []domain.Exercise) (*domain.WorkoutPlan, error)
	DeleteByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) error
	DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error
}

// DietPlanRepository mirrors WorkoutPlanRepository for diet plans.
type DietPlanRepository interface {
	GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.DietPlan, error)
	Upsert(ctx context.Context, memberID, trainerID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, bool, error)
	GetByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) (*domain.DietPlan, error)
	UpdateMeals(ctx context.Context, planID, trainerID primitive.ObjectID, meals []domain.Meal) (*domain.DietPlan, error)
	DeleteByIDForTrainer(ctx context.Context, planID, trainerID primitive.ObjectID) error
	DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error
}

// ChatRepository defines the interface for chat documents. WithTransaction
// runs fn inside a mongo session so find-or-create and message append/delete
// stay atomic against concurrent requests for the same pair.
type ChatRepository interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error)
	Create(ctx context.Context, chat *domain.Chat) (primitive.ObjectID, error)
	GetByIDForUser(ctx context.Context, chatID, userID primitive.ObjectID) (*domain.Chat, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]domain.Chat, int64, error)
	PushMessage(ctx context.Context, chatID, messageID primitive.ObjectID, at time.Time) error
	PullMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error
	SetLastRead(ctx context.Context, chatID, userID primitive.ObjectID, at time.Time) error
}

// MessageRepository defines the interface for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error)
	GetByIDForSender(ctx context.Context, messageID, senderID primitive.ObjectID) (*domain.Message, error)
	ListByChat(ctx context.Context, chatID primitive.ObjectID, page, limit int) ([]domain.Message, int64, error)
	LatestByChat(ctx context.Context, chatID primitive.ObjectID) (*domain.Message, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OTPRepository defines the interface for email verification codes.
type OTPRepository interface {
	Create(ctx context.Context, otp *domain.OTP) (primitive.ObjectID, error)
	GetActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.OTP, error)
	GetCreatedSince(ctx context.Context, email string, since time.Time) (*domain.OTP, error)
	IncrementAttempts(ctx context.Context, id primitive.ObjectID) (int, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// ProgressPhotoRepository defines the interface for progress photo metadata.
type ProgressPhotoRepository interface {
	Create(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error)
	GetByIDForMember(ctx context.Context, id, memberID primitive.ObjectID) (*domain.ProgressPhoto, error)
	ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.ProgressPhoto, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
