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
	ErrNotAMember        = errors.New("user is not a member")
	ErrNotATrainer       = errors.New("user is not a trainer")
	ErrUserNotVerified   = errors.New("user is not verified")
	ErrCannotRemoveSelf  = errors.New("admins cannot remove their own account")
	ErrCannotRemoveAdmin = errors.New("admin accounts cannot be removed")
)

// UserTiming pairs an account with the time slots it cares about, members
// with their preferences and trainers with their availability.
type UserTiming struct {
	User      *domain.User      `json:"user"`
	TimeSlots []domain.TimeSlot `json:"timeSlots"`
}

// TrainerAssignment is one trainer with their currently assigned members.
type TrainerAssignment struct {
	Trainer *domain.User           `json:"trainer"`
	Profile *domain.TrainerProfile `json:"profile,omitempty"`
	Members []domain.User          `json:"members"`
}

// AssignmentOverview is the admin's matchmaking view: every trainer's roster
// plus the members still waiting for one.
type AssignmentOverview struct {
	Assignments       []TrainerAssignment `json:"assignments"`
	UnassignedMembers []domain.User       `json:"unassignedMembers"`
}

// DashboardStats aggregates the numbers on the admin landing screen.
type DashboardStats struct {
	TotalUsers          int64                            `json:"totalUsers"`
	TotalMembers        int64                            `json:"totalMembers"`
	TotalTrainers       int64                            `json:"totalTrainers"`
	VerifiedUsers       int64                            `json:"verifiedUsers"`
	ActiveSubscriptions int64                            `json:"activeSubscriptions"`
	PlanBreakdown       []repository.PlanSubscriberCount `json:"planBreakdown"`
	TotalRevenue        float64                          `json:"totalRevenue"`
	RecentPayments      []domain.Payment                 `json:"recentPayments"`
	UnassignedMembers   int64                            `json:"unassignedMembers"`
}

// AdminService covers user administration, trainer matchmaking and the
// dashboard aggregates.
type AdminService interface {
	ListUsers(ctx context.Context, filter repository.UserFilter, page, limit int) ([]domain.User, int64, error)
	ListUserTimings(ctx context.Context, day, from, to string) ([]UserTiming, error)
	VerifyUser(ctx context.Context, userID primitive.ObjectID, verified bool) (*domain.User, error)
	RemoveUser(ctx context.Context, adminID, userID primitive.ObjectID) error
	ListSubscriptions(ctx context.Context, filter repository.SubscriptionFilter, page, limit int) ([]domain.User, int64, error)
	TrainerAssignments(ctx context.Context) (*AssignmentOverview, error)
	AssignTrainer(ctx context.Context, memberID, trainerID primitive.ObjectID) error
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

type adminService struct {
	userRepo           repository.UserRepository
	memberProfileRepo  repository.MemberProfileRepository
	trainerProfileRepo repository.TrainerProfileRepository
	workoutPlanRepo    repository.WorkoutPlanRepository
	dietPlanRepo       repository.DietPlanRepository
	paymentRepo        repository.PaymentRepository
}

// NewAdminService creates a new instance of adminService.
func NewAdminService(
	userRepo repository.UserRepository,
	memberProfileRepo repository.MemberProfileRepository,
	trainerProfileRepo repository.TrainerProfileRepository,
	workoutPlanRepo repository.WorkoutPlanRepository,
	dietPlanRepo repository.DietPlanRepository,
	paymentRepo repository.PaymentRepository,
) AdminService {
	return &adminService{
		userRepo:           userRepo,
		memberProfileRepo:  memberProfileRepo,
		trainerProfileRepo: trainerProfileRepo,
		workoutPlanRepo:    workoutPlanRepo,
		dietPlanRepo:       dietPlanRepo,
		paymentRepo:        paymentRepo,
	}
}

// ListUsers pages through accounts with role, verification and search filters.
func (s *adminService) ListUsers(ctx context.Context, filter repository.UserFilter, page, limit int) ([]domain.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

// ListUserTimings reports member slot preferences and trainer availability
// side by side, for scheduling and matchmaking. Day, from and to narrow the
// result to accounts with a matching slot; empty filters list everyone.
func (s *adminService) ListUserTimings(ctx context.Context, day, from, to string) ([]UserTiming, error) {
	if day != "" || from != "" || to != "" {
		return s.listUserTimingsBySlot(ctx, day, from, to)
	}

	timings := []UserTiming{}

	members, err := s.userRepo.ListByRole(ctx, domain.RoleMember)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].PasswordHash = ""
		timing := UserTiming{User: &members[i], TimeSlots: []domain.TimeSlot{}}
		if profile, err := s.memberProfileRepo.GetByUserID(ctx, members[i].ID); err == nil {
			timing.TimeSlots = profile.PreferredTimeSlot
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		timings = append(timings, timing)
	}

	trainers, err := s.userRepo.ListByRole(ctx, domain.RoleTrainer)
	if err != nil {
		return nil, err
	}
	for i := range trainers {
		trainers[i].PasswordHash = ""
		timing := UserTiming{User: &trainers[i], TimeSlots: []domain.TimeSlot{}}
		if profile, err := s.trainerProfileRepo.GetByUserID(ctx, trainers[i].ID); err == nil {
			timing.TimeSlots = profile.AvailableTimeSlots
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		timings = append(timings, timing)
	}

	return timings, nil
}

// listUserTimingsBySlot resolves the slot filter against both profile
// collections and hydrates the matching accounts.
func (s *adminService) listUserTimingsBySlot(ctx context.Context, day, from, to string) ([]UserTiming, error) {
	timings := []UserTiming{}

	memberProfiles, err := s.memberProfileRepo.FindBySlot(ctx, day, from, to)
	if err != nil {
		return nil, err
	}
	memberSlots := make(map[primitive.ObjectID][]domain.TimeSlot, len(memberProfiles))
	memberIDs := make([]primitive.ObjectID, 0, len(memberProfiles))
	for _, profile := range memberProfiles {
		memberSlots[profile.UserID] = profile.PreferredTimeSlot
		memberIDs = append(memberIDs, profile.UserID)
	}
	members, err := s.userRepo.ListByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].PasswordHash = ""
		timings = append(timings, UserTiming{User: &members[i], TimeSlots: memberSlots[members[i].ID]})
	}

	trainerProfiles, err := s.trainerProfileRepo.FindBySlot(ctx, day, from, to)
	if err != nil {
		return nil, err
	}
	trainerSlots := make(map[primitive.ObjectID][]domain.TimeSlot, len(trainerProfiles))
	trainerIDs := make([]primitive.ObjectID, 0, len(trainerProfiles))
	for _, profile := range trainerProfiles {
		trainerSlots[profile.UserID] = profile.AvailableTimeSlots
		trainerIDs = append(trainerIDs, profile.UserID)
	}
	trainers, err := s.userRepo.ListByIDs(ctx, trainerIDs)
	if err != nil {
		return nil, err
	}
	for i := range trainers {
		trainers[i].PasswordHash = ""
		timings = append(timings, UserTiming{User: &trainers[i], TimeSlots: trainerSlots[trainers[i].ID]})
	}

	return timings, nil
}

// VerifyUser sets the verification flag by hand, verifying accounts stuck in
// the OTP flow or revoking verification outright.
func (s *adminService) VerifyUser(ctx context.Context, userID primitive.ObjectID, verified bool) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.IsVerified != verified {
		if err := s.userRepo.SetVerified(ctx, userID, verified); err != nil {
			return nil, err
		}
		user.IsVerified = verified
	}

	user.PasswordHash = ""
	return user, nil
}

// RemoveUser deletes an account and its dependents. Admin accounts are never
// removable through this endpoint, the caller's own included.
func (s *adminService) RemoveUser(ctx context.Context, adminID, userID primitive.ObjectID) error {
	if adminID == userID {
		return ErrCannotRemoveSelf
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsAdmin() {
		return ErrCannotRemoveAdmin
	}

	return cascadeDeleteUser(ctx, s.userRepo, s.memberProfileRepo, s.trainerProfileRepo, s.workoutPlanRepo, s.dietPlanRepo, user)
}

// ListSubscriptions pages through subscribed members.
func (s *adminService) ListSubscriptions(ctx context.Context, filter repository.SubscriptionFilter, page, limit int) ([]domain.User, int64, error) {
	users, total, err := s.userRepo.ListBySubscription(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

// TrainerAssignments returns each trainer's roster and the unassigned pool.
func (s *adminService) TrainerAssignments(ctx context.Context) (*AssignmentOverview, error) {
	trainers, err := s.userRepo.ListByRole(ctx, domain.RoleTrainer)
	if err != nil {
		return nil, err
	}

	overview := &AssignmentOverview{Assignments: []TrainerAssignment{}}
	for i := range trainers {
		trainers[i].PasswordHash = ""
		assignment := TrainerAssignment{Trainer: &trainers[i], Members: []domain.User{}}

		profile, err := s.trainerProfileRepo.GetByUserID(ctx, trainers[i].ID)
		if err == nil {
			assignment.Profile = profile
			members, err := s.userRepo.ListByIDs(ctx, profile.MembersAssigned)
			if err != nil {
				return nil, err
			}
			for j := range members {
				members[j].PasswordHash = ""
			}
			assignment.Members = members
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		overview.Assignments = append(overview.Assignments, assignment)
	}

	unassigned, err := s.userRepo.ListMembersWithoutTrainer(ctx)
	if err != nil {
		return nil, err
	}
	for i := range unassigned {
		unassigned[i].PasswordHash = ""
	}
	overview.UnassignedMembers = unassigned

	return overview, nil
}

// AssignTrainer links a member to a trainer, keeping the member document and
// both trainer rosters in sync. Reassignment detaches the old trainer first.
func (s *adminService) AssignTrainer(ctx context.Context, memberID, trainerID primitive.ObjectID) error {
	member, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !member.IsMember() {
		return ErrNotAMember
	}

	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !trainer.IsTrainer() {
		return ErrNotATrainer
	}
	if !trainer.IsVerified {
		return ErrUserNotVerified
	}

	if member.TrainerAssigned != nil && *member.TrainerAssigned != trainerID {
		if err := s.trainerProfileRepo.RemoveMember(ctx, *member.TrainerAssigned, memberID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	if err := s.userRepo.SetTrainer(ctx, memberID, trainerID); err != nil {
		return err
	}
	return s.trainerProfileRepo.AddMember(ctx, trainerID, memberID)
}

// DashboardStats gathers the admin landing numbers in one call.
func (s *adminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := nowUTC()

	var err error
	if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalMembers, err = s.userRepo.CountByRole(ctx, domain.RoleMember); err != nil {
		return nil, err
	}
	if stats.TotalTrainers, err = s.userRepo.CountByRole(ctx, domain.RoleTrainer); err != nil {
		return nil, err
	}
	if stats.VerifiedUsers, err = s.userRepo.CountVerified(ctx, true); err != nil {
		return nil, err
	}
	if stats.ActiveSubscriptions, err = s.userRepo.CountActiveSubscriptions(ctx, now); err != nil {
		return nil, err
	}
	if stats.PlanBreakdown, err = s.userRepo.SubscriptionPlanStats(ctx); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = s.paymentRepo.SumAmount(ctx, repository.PaymentFilter{Status: domain.PaymentSuccess}); err != nil {
		return nil, err
	}
	if stats.RecentPayments, err = s.paymentRepo.ListRecent(ctx, 10); err != nil {
		return nil, err
	}

	unassigned, err := s.userRepo.ListMembersWithoutTrainer(ctx)
	if err != nil {
		return nil, err
	}
	stats.UnassignedMembers = int64(len(unassigned))

	return stats, nil
}
