package api

import (
	"errors"
	"fmt"
	"net/http"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"
	"gymsync/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerHandler covers the trainer-facing routes.
type TrainerHandler struct {
	trainerService service.TrainerService
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- Request Structs ---

type ExerciseRequest struct {
	Name  string `json:"name" binding:"required"`
	Sets  string `json:"sets"`
	Reps  string `json:"reps"`
	Day   string `json:"day"`
	Notes string `json:"notes"`
}

type WorkoutPlanRequest struct {
	MemberID  string            `json:"memberId" binding:"required"`
	Exercises []ExerciseRequest `json:"exercises" binding:"required,min=1,dive"`
}

type WorkoutPlanUpdateRequest struct {
	Exercises []ExerciseRequest `json:"exercises" binding:"required,min=1,dive"`
}

type MealRequest struct {
	Time      string   `json:"time" binding:"required"`
	FoodItems []string `json:"foodItems" binding:"required,min=1"`
	Notes     string   `json:"notes"`
}

type DietPlanRequest struct {
	MemberID string        `json:"memberId" binding:"required"`
	Meals    []MealRequest `json:"meals" binding:"required,min=1,dive"`
}

type DietPlanUpdateRequest struct {
	Meals []MealRequest `json:"meals" binding:"required,min=1,dive"`
}

type UpdateTrainerProfileRequest struct {
	Expertise          []string          `json:"expertise"`
	AvailableTimeSlots []TimeSlotRequest `json:"availableTimeSlots"`
}

func mapExercises(reqs []ExerciseRequest) []domain.Exercise {
	out := make([]domain.Exercise, len(reqs))
	for i, r := range reqs {
		out[i] = domain.Exercise{Name: r.Name, Sets: r.Sets, Reps: r.Reps, Day: r.Day, Notes: r.Notes}
	}
	return out
}

func mapMeals(reqs []MealRequest) []domain.Meal {
	out := make([]domain.Meal, len(reqs))
	for i, r := range reqs {
		out[i] = domain.Meal{Time: r.Time, FoodItems: r.FoodItems, Notes: r.Notes}
	}
	return out
}

// abortTrainerPlanError maps the common plan operation failures.
func abortTrainerPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, service.ErrMemberNotAssigned):
		abortWithError(c, http.StatusForbidden, err.Error(), CodeAccessDenied)
	case errors.Is(err, service.ErrPremiumRequired):
		abortWithError(c, http.StatusForbidden, err.Error(), CodeSubscriptionRequired)
	case errors.Is(err, service.ErrFitnessPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, service.ErrEmptyPlan):
		abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
	default:
		abortWithError(c, http.StatusInternalServerError, "Operation failed", CodeInternalError)
	}
}

// --- Handler Methods ---

// GetMembers returns the trainer's roster.
func (h *TrainerHandler) GetMembers(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	members, err := h.trainerService.GetMembers(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load members", CodeInternalError)
		return
	}

	responses := make([]UserResponse, len(members))
	for i := range members {
		responses[i] = MapUserToResponse(&members[i])
	}
	respondOK(c, http.StatusOK, responses)
}

// GetMemberPlans returns the plans of one assigned member.
func (h *TrainerHandler) GetMemberPlans(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	memberID, ok := parseObjectIDParam(c, "memberId")
	if !ok {
		return
	}

	plans, err := h.trainerService.GetMemberPlans(c.Request.Context(), trainerID, memberID)
	if err != nil {
		abortTrainerPlanError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plans)
}

// CreateWorkoutPlan assigns (or replaces) a member's workout plan.
func (h *TrainerHandler) CreateWorkoutPlan(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req WorkoutPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid memberId", CodeValidationError)
		return
	}

	plan, created, err := h.trainerService.AssignWorkoutPlan(c.Request.Context(), trainerID, memberID, mapExercises(req.Exercises))
	if err != nil {
		abortTrainerPlanError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondOK(c, status, plan)
}

// UpdateWorkoutPlan rewrites the exercises of an existing plan.
func (h *TrainerHandler) UpdateWorkoutPlan(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	var req WorkoutPlanUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	plan, err := h.trainerService.UpdateWorkoutPlan(c.Request.Context(), trainerID, planID, mapExercises(req.Exercises))
	if err != nil {
		abortTrainerPlanError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plan)
}

// DeleteWorkoutPlan removes a plan the trainer authored.
func (h *TrainerHandler) DeleteWorkoutPlan(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	if err := h.trainerService.DeleteWorkoutPlan(c.Request.Context(), trainerID, planID); err != nil {
		abortTrainerPlanError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Workout plan deleted")
}

// CreateDietPlan assigns (or replaces) a member's diet plan.
func (h *TrainerHandler) CreateDietPlan(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req DietPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid memberId", CodeValidationError)
		return
	}

	plan, created, err := h.trainerService.AssignDietPlan(c.Request.Context(), trainerID, memberID, mapMeals(req.Meals))
	if err != nil {
		abortTrainerPlanError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondOK(c, status, plan)
}

// UpdateDietPlan rewrites the meals of an existing plan.
func (h *TrainerHandler) UpdateDietPlan(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	var req DietPlanUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	plan, err := h.trainerService.UpdateDietPlan(c.Request.Context(), trainerID, planID, mapMeals(req.Meals))
	if err != nil {
		abortTrainerPlanError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plan)
}

// DeleteDietPlan removes a plan the trainer authored.
func (h *TrainerHandler) DeleteDietPlan(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	if err := h.trainerService.DeleteDietPlan(c.Request.Context(), trainerID, planID); err != nil {
		abortTrainerPlanError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Diet plan deleted")
}

// GetProfile returns the trainer's public profile.
func (h *TrainerHandler) GetProfile(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	profile, err := h.trainerService.GetProfile(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load profile", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, profile)
}

// UpdateProfile applies a partial update to the trainer's profile.
func (h *TrainerHandler) UpdateProfile(c *gin.Context) {
	trainerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req UpdateTrainerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	profile, err := h.trainerService.UpdateProfile(c.Request.Context(), trainerID, repository.TrainerProfileUpdate{
		Expertise:          req.Expertise,
		AvailableTimeSlots: mapSlots(req.AvailableTimeSlots),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeSlot) {
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to update profile", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, profile)
}
