package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"
	"gymsync/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// MemberHandler covers the member-facing routes.
type MemberHandler struct {
	memberService service.MemberService
	planService   service.PlanService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberService service.MemberService, planService service.PlanService) *MemberHandler {
	return &MemberHandler{memberService: memberService, planService: planService}
}

// --- Request Structs ---

type TimeSlotRequest struct {
	Day  string `json:"day" binding:"required"`
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type UpdateMemberProfileRequest struct {
	Age               *int              `json:"age" binding:"omitempty,min=10,max=120"`
	Weight            *float64          `json:"weight" binding:"omitempty,gt=0"`
	Height            *float64          `json:"height" binding:"omitempty,gt=0"`
	Goal              *string           `json:"goal"`
	PreferredTimeSlot []TimeSlotRequest `json:"preferredTimeSlot"`
}

type SetTimeSlotsRequest struct {
	TimeSlots []TimeSlotRequest `json:"timeSlots" binding:"required"`
}

type PhotoUploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType" binding:"required"`
}

func mapSlots(slots []TimeSlotRequest) []domain.TimeSlot {
	if slots == nil {
		return nil
	}
	out := make([]domain.TimeSlot, len(slots))
	for i, s := range slots {
		out[i] = domain.TimeSlot{Day: s.Day, From: s.From, To: s.To}
	}
	return out
}

// --- Handler Methods ---

// GetProfile returns the member's fitness profile.
func (h *MemberHandler) GetProfile(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	profile, err := h.memberService.GetProfile(c.Request.Context(), memberID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load profile", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, profile)
}

// UpdateProfile applies a partial update to the fitness profile.
func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req UpdateMemberProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	profile, err := h.memberService.UpdateProfile(c.Request.Context(), memberID, repository.MemberProfileUpdate{
		Age:               req.Age,
		Weight:            req.Weight,
		Height:            req.Height,
		Goal:              req.Goal,
		PreferredTimeSlot: mapSlots(req.PreferredTimeSlot),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeSlot) {
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
			return
		}
		abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		return
	}
	respondOK(c, http.StatusOK, profile)
}

// SetTimeSlots replaces the member's preferred slots.
func (h *MemberHandler) SetTimeSlots(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req SetTimeSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	profile, err := h.memberService.SetPreferredTimeSlots(c.Request.Context(), memberID, mapSlots(req.TimeSlots))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeSlot) {
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to update time slots", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, profile)
}

// AvailablePlans returns the catalog for the member's plan picker. The
// subscriber stats stay on the admin views.
func (h *MemberHandler) AvailablePlans(c *gin.Context) {
	details, err := h.planService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load plans", CodeInternalError)
		return
	}

	plans := make([]domain.Plan, len(details))
	for i := range details {
		plans[i] = *details[i].Plan
	}
	respondOK(c, http.StatusOK, plans)
}

// SubscriptionStatus returns the member's live subscription state.
func (h *MemberHandler) SubscriptionStatus(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	user, err := h.planService.CheckAccess(c.Request.Context(), memberID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load subscription", CodeInternalError)
		return
	}

	now := time.Now().UTC()
	respondOK(c, http.StatusOK, gin.H{
		"hasSubscription": user.HasActiveSubscription(now),
		"plan":            user.SubscriptionPlan,
		"validTill":       user.SubscriptionValidTill,
		"premiumAccess":   user.HasPremiumAccess(now),
	})
}

// GetTrainer returns the member's assigned trainer.
func (h *MemberHandler) GetTrainer(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	info, err := h.memberService.GetTrainer(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrNoTrainerAssigned) {
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load trainer", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"trainer": MapUserToResponse(info.Trainer),
		"profile": info.Profile,
	})
}

// MyPlans returns the member's workout and diet plans.
func (h *MemberHandler) MyPlans(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	plans, err := h.memberService.GetMyPlans(c.Request.Context(), memberID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPremiumRequired):
			abortWithError(c, http.StatusForbidden, err.Error(), CodeSubscriptionRequired)
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load plans", CodeInternalError)
		}
		return
	}
	respondOK(c, http.StatusOK, plans)
}

// RequestTrainerChange files the member's request for a different trainer.
// Reassignment itself is an admin action.
func (h *MemberHandler) RequestTrainerChange(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	if err := h.memberService.RequestTrainerChange(c.Request.Context(), memberID); err != nil {
		if errors.Is(err, service.ErrNoTrainerAssigned) {
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to request trainer change", CodeInternalError)
		return
	}
	respondMessage(c, http.StatusOK, "Trainer change requested, an admin will review it")
}

// --- Progress photos ---

// RequestPhotoUpload issues a presigned upload URL and records the metadata.
func (h *MemberHandler) RequestPhotoUpload(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req PhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	upload, err := h.memberService.RequestPhotoUpload(c.Request.Context(), memberID, req.FileName, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContentType) {
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to prepare upload", CodeInternalError)
		return
	}
	respondOK(c, http.StatusCreated, upload)
}

// ListPhotos returns the member's photos with download URLs.
func (h *MemberHandler) ListPhotos(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	photos, err := h.memberService.ListPhotos(c.Request.Context(), memberID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load photos", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, photos)
}

// DeletePhoto removes one of the member's photos.
func (h *MemberHandler) DeletePhoto(c *gin.Context) {
	memberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	photoID, ok := parseObjectIDParam(c, "photoId")
	if !ok {
		return
	}

	if err := h.memberService.DeletePhoto(c.Request.Context(), memberID, photoID); err != nil {
		if errors.Is(err, service.ErrPhotoNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete photo", CodeInternalError)
		return
	}
	respondMessage(c, http.StatusOK, "Photo deleted")
}
