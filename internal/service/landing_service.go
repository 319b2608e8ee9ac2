package service

import (
	"context"
	"log"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"
)

// Fallback numbers shown on the public pages while the database is still
// too empty to be impressive.
const (
	fallbackMemberCount  = 500
	fallbackTrainerCount = 20
	fallbackPlanCount    = 2
)

// PublicStats is the anonymous counters block on the landing page.
type PublicStats struct {
	Members       int64 `json:"members"`
	Trainers      int64 `json:"trainers"`
	Plans         int64 `json:"plans"`
	ActiveMembers int64 `json:"activeMembers"`
}

// LandingContent is everything the public landing page needs in one call.
type LandingContent struct {
	Stats            PublicStats   `json:"stats"`
	Plans            []domain.Plan `json:"plans"`
	FeaturedTrainers []domain.User `json:"featuredTrainers"`
}

// LandingService serves the unauthenticated landing page and stats counters.
// These endpoints must always answer something, so failures degrade to the
// fallback numbers instead of erroring.
type LandingService interface {
	GetLanding(ctx context.Context) (*LandingContent, error)
	GetStats(ctx context.Context) (*PublicStats, error)
}

type landingService struct {
	userRepo repository.UserRepository
	planRepo repository.PlanRepository
}

// NewLandingService creates a new instance of landingService.
func NewLandingService(userRepo repository.UserRepository, planRepo repository.PlanRepository) LandingService {
	return &landingService{
		userRepo: userRepo,
		planRepo: planRepo,
	}
}

// GetStats returns the public counters, padded with fallbacks when the real
// numbers are zero or unavailable.
func (s *landingService) GetStats(ctx context.Context) (*PublicStats, error) {
	stats := &PublicStats{
		Members:  fallbackMemberCount,
		Trainers: fallbackTrainerCount,
		Plans:    fallbackPlanCount,
	}

	if members, err := s.userRepo.CountByRole(ctx, domain.RoleMember); err == nil && members > 0 {
		stats.Members = members
	} else if err != nil {
		log.Printf("WARN: landing stats member count failed: %v", err)
	}
	if trainers, err := s.userRepo.CountByRole(ctx, domain.RoleTrainer); err == nil && trainers > 0 {
		stats.Trainers = trainers
	} else if err != nil {
		log.Printf("WARN: landing stats trainer count failed: %v", err)
	}
	if plans, err := s.planRepo.Count(ctx); err == nil && plans > 0 {
		stats.Plans = plans
	} else if err != nil {
		log.Printf("WARN: landing stats plan count failed: %v", err)
	}
	if active, err := s.userRepo.CountActiveSubscriptions(ctx, nowUTC()); err == nil {
		stats.ActiveMembers = active
	}

	return stats, nil
}

// GetLanding bundles stats, the plan catalog and a few verified trainers.
func (s *landingService) GetLanding(ctx context.Context) (*LandingContent, error) {
	stats, err := s.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	content := &LandingContent{
		Stats:            *stats,
		Plans:            []domain.Plan{},
		FeaturedTrainers: []domain.User{},
	}

	if plans, err := s.planRepo.List(ctx); err == nil {
		content.Plans = plans
	} else {
		log.Printf("WARN: landing plan listing failed: %v", err)
	}

	if trainers, err := s.userRepo.ListVerifiedTrainers(ctx, 4); err == nil {
		for i := range trainers {
			trainers[i].PasswordHash = ""
		}
		content.FeaturedTrainers = trainers
	} else {
		log.Printf("WARN: landing trainer listing failed: %v", err)
	}

	return content, nil
}
