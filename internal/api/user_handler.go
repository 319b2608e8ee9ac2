package api

import (
	"errors"
	"fmt"
	"net/http"

	"gymsync/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler covers self-service account routes shared by every role.
type UserHandler struct {
	userService  service.UserService
	secureCookie bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, secureCookie bool) *UserHandler {
	return &UserHandler{userService: userService, secureCookie: secureCookie}
}

// --- Request Structs ---

type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Phone *string `json:"phone" binding:"omitempty,min=5"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// --- Handler Methods ---

// GetProfile returns the caller's account with live subscription state.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load profile", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, MapUserToResponse(user))
}

// UpdateProfile changes name and/or phone.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		case errors.Is(err, service.ErrPhoneTaken):
			abortWithError(c, http.StatusConflict, err.Error(), CodeDuplicateField)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile", CodeInternalError)
		}
		return
	}
	respondOK(c, http.StatusOK, MapUserToResponse(user))
}

// ChangePassword swaps the password after checking the current one.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			abortWithError(c, http.StatusUnauthorized, err.Error(), CodeUnauthorized)
		case errors.Is(err, service.ErrSamePassword), errors.Is(err, service.ErrPasswordTooShort):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to change password", CodeInternalError)
		}
		return
	}
	respondMessage(c, http.StatusOK, "Password updated")
}

// DeleteAccount removes the caller's account and ends the session.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete account", CodeInternalError)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", h.secureCookie, true)
	respondMessage(c, http.StatusOK, "Account deleted")
}
