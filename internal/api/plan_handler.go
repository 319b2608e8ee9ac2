package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler covers the plan catalog and subscription access checks. The
// purchase itself lives on PaymentHandler.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request Structs ---

type PlanRequest struct {
	Name           domain.PlanName `json:"name" binding:"required,oneof=basic premium"`
	Price          float64         `json:"price" binding:"required,gt=0"`
	DurationInDays int             `json:"durationInDays" binding:"required,gt=0"`
	Features       []string        `json:"features"`
}

// --- Handler Methods ---

// List returns the public plan catalog.
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.planService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load plans", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, plans)
}

// Get returns one plan.
func (h *PlanHandler) Get(c *gin.Context) {
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.Get(c.Request.Context(), planID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load plan", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, plan)
}

// CheckAccess reports the caller's current subscription entitlements.
func (h *PlanHandler) CheckAccess(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	user, err := h.planService.CheckAccess(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to check access", CodeInternalError)
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

// SubscriptionHistory pages through the caller's payments.
func (h *PlanHandler) SubscriptionHistory(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	page, limit := parsePaging(c)
	payments, total, err := h.planService.SubscriptionHistory(c.Request.Context(), userID, page, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load history", CodeInternalError)
		return
	}
	respondPage(c, payments, page, limit, total)
}

// --- Admin catalog management ---

// Create adds a plan to the catalog.
func (h *PlanHandler) Create(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), service.PlanInput{
		Name:           req.Name,
		Price:          req.Price,
		DurationInDays: req.DurationInDays,
		Features:       req.Features,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanExists):
			abortWithError(c, http.StatusConflict, err.Error(), CodeDuplicateField)
		case errors.Is(err, service.ErrInvalidPlan):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create plan", CodeInternalError)
		}
		return
	}
	respondOK(c, http.StatusCreated, plan)
}

// Update rewrites a catalog plan.
func (h *PlanHandler) Update(c *gin.Context) {
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), planID, service.PlanInput{
		Name:           req.Name,
		Price:          req.Price,
		DurationInDays: req.DurationInDays,
		Features:       req.Features,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		case errors.Is(err, service.ErrPlanExists):
			abortWithError(c, http.StatusConflict, err.Error(), CodeDuplicateField)
		case errors.Is(err, service.ErrInvalidPlan):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update plan", CodeInternalError)
		}
		return
	}
	respondOK(c, http.StatusOK, plan)
}

// Delete removes a plan from the catalog.
func (h *PlanHandler) Delete(c *gin.Context) {
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.Delete(c.Request.Context(), planID); err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		case errors.Is(err, service.ErrPlanInUse):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan", CodeInternalError)
		}
		return
	}
	respondMessage(c, http.StatusOK, "Plan deleted")
}
