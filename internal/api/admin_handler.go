package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"
	"gymsync/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler covers user administration, trainer matchmaking and the
// dashboard.
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// --- Request Structs ---

type AssignTrainerRequest struct {
	MemberID  string `json:"memberId" binding:"required"`
	TrainerID string `json:"trainerId" binding:"required"`
}

// VerifyUserRequest carries the target verification state. A pointer keeps
// an explicit false distinguishable from an absent field.
type VerifyUserRequest struct {
	IsVerified *bool `json:"isVerified" binding:"required"`
}

// --- Handler Methods ---

// ListUsers pages through accounts with role, verification and search filters.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := repository.UserFilter{Search: c.Query("search")}

	if raw := c.Query("role"); raw != "" {
		role := domain.Role(raw)
		if !role.IsValid() {
			abortWithError(c, http.StatusBadRequest, "Invalid role", CodeValidationError)
			return
		}
		filter.Role = role
	}
	if raw := c.Query("verified"); raw != "" {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid verified flag", CodeValidationError)
			return
		}
		filter.IsVerified = &verified
	}

	page, limit := parsePaging(c)
	users, total, err := h.adminService.ListUsers(c.Request.Context(), filter, page, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load users", CodeInternalError)
		return
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = MapUserToResponse(&users[i])
	}
	respondPage(c, responses, page, limit, total)
}

// ListUserTimings reports member slot preferences and trainer availability,
// optionally narrowed to a day and time window.
func (h *AdminHandler) ListUserTimings(c *gin.Context) {
	timings, err := h.adminService.ListUserTimings(c.Request.Context(), c.Query("day"), c.Query("from"), c.Query("to"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load timings", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, timings)
}

// VerifyUser sets the verification flag by hand, in either direction.
func (h *AdminHandler) VerifyUser(c *gin.Context) {
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}

	var req VerifyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	user, err := h.adminService.VerifyUser(c.Request.Context(), userID, *req.IsVerified)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to verify user", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, MapUserToResponse(user))
}

// RemoveUser deletes an account and its dependents.
func (h *AdminHandler) RemoveUser(c *gin.Context) {
	adminID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.adminService.RemoveUser(c.Request.Context(), adminID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrCannotRemoveSelf), errors.Is(err, service.ErrCannotRemoveAdmin):
			abortWithError(c, http.StatusForbidden, err.Error(), CodeAccessDenied)
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to remove user", CodeInternalError)
		}
		return
	}
	respondMessage(c, http.StatusOK, "User removed")
}

// ListSubscriptions pages through subscribed members.
func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	filter := repository.SubscriptionFilter{}

	if raw := c.Query("plan"); raw != "" {
		plan := domain.PlanName(raw)
		if !plan.IsValid() {
			abortWithError(c, http.StatusBadRequest, "Invalid plan", CodeValidationError)
			return
		}
		filter.Plan = plan
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid active flag", CodeValidationError)
			return
		}
		filter.IsActive = &active
	}

	page, limit := parsePaging(c)
	users, total, err := h.adminService.ListSubscriptions(c.Request.Context(), filter, page, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load subscriptions", CodeInternalError)
		return
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = MapUserToResponse(&users[i])
	}
	respondPage(c, responses, page, limit, total)
}

// TrainerAssignments returns every trainer's roster plus the unassigned pool.
func (h *AdminHandler) TrainerAssignments(c *gin.Context) {
	overview, err := h.adminService.TrainerAssignments(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load assignments", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, overview)
}

// AssignTrainer links a member to a trainer.
func (h *AdminHandler) AssignTrainer(c *gin.Context) {
	var req AssignTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid memberId", CodeValidationError)
		return
	}
	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainerId", CodeValidationError)
		return
	}

	if err := h.adminService.AssignTrainer(c.Request.Context(), memberID, trainerID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		case errors.Is(err, service.ErrNotAMember), errors.Is(err, service.ErrNotATrainer), errors.Is(err, service.ErrUserNotVerified):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign trainer", CodeInternalError)
		}
		return
	}
	respondMessage(c, http.StatusOK, "Trainer assigned")
}

// DashboardStats gathers the admin landing numbers.
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	stats, err := h.adminService.DashboardStats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load dashboard stats", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
