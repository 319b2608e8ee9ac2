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

// AuthHandler drives signup, login and session management.
type AuthHandler struct {
	authService  service.AuthService
	cookieMaxAge int
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. cookieTTL should match the JWT
// expiration so the cookie and the token die together.
func NewAuthHandler(authService service.AuthService, cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieMaxAge: int(cookieTTL.Seconds()),
		secureCookie: secureCookie,
	}
}

// --- Request/Response Structs ---

type InitiateRegistrationRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Phone    string      `json:"phone" binding:"required"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     domain.Role `json:"role" binding:"required,oneof=member trainer"`
}

type VerifyRegistrationRequest struct {
	TempData string `json:"tempData" binding:"required"`
	OTP      string `json:"otp" binding:"required,len=6"`
}

type ResendOTPRequest struct {
	TempData string `json:"tempData" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse excludes sensitive info like the password hash and converts
// ObjectIDs to hex strings.
type UserResponse struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Email                 string          `json:"email"`
	Phone                 string          `json:"phone"`
	Role                  domain.Role     `json:"role"`
	IsVerified            bool            `json:"isVerified"`
	SubscriptionPlan      domain.PlanName `json:"subscriptionPlan,omitempty"`
	SubscriptionValidTill *time.Time      `json:"subscriptionValidTill,omitempty"`
	TrainerAssigned       *string         `json:"trainerAssigned,omitempty"`
	LastLoginAt           *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}

	resp := UserResponse{
		ID:                    user.ID.Hex(),
		Name:                  user.Name,
		Email:                 user.Email,
		Phone:                 user.Phone,
		Role:                  user.Role,
		IsVerified:            user.IsVerified,
		SubscriptionPlan:      user.SubscriptionPlan,
		SubscriptionValidTill: user.SubscriptionValidTill,
		LastLoginAt:           user.LastLoginAt,
		CreatedAt:             user.CreatedAt,
	}
	if user.TrainerAssigned != nil {
		hex := user.TrainerAssigned.Hex()
		resp.TrainerAssigned = &hex
	}
	return resp
}

// --- Handler Methods ---

// InitiateRegistration starts the two-step signup: validates the details,
// emails a code, and returns the opaque payload for the verify step.
func (h *AuthHandler) InitiateRegistration(c *gin.Context) {
	var req InitiateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	tempData, err := h.authService.InitiateRegistration(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error(), CodeDuplicateField)
		case errors.Is(err, service.ErrMailDelivery):
			abortWithError(c, http.StatusInternalServerError, "Could not send verification email", CodeInternalError)
		default:
			abortWithError(c, http.StatusInternalServerError, "Registration failed", CodeInternalError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Verification code sent",
		"tempData": tempData,
	})
}

// VerifyRegistration completes signup with the emailed code and logs the new
// account in.
func (h *AuthHandler) VerifyRegistration(c *gin.Context) {
	var req VerifyRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	token, user, err := h.authService.VerifyRegistration(c.Request.Context(), req.TempData, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTempData):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		case errors.Is(err, service.ErrOTPExpired):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeOTPExpired)
		case errors.Is(err, service.ErrInvalidOTP):
			var mismatch *service.OTPMismatchError
			if errors.As(err, &mismatch) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success":      false,
					"message":      err.Error(),
					"code":         CodeInvalidOTP,
					"attemptsLeft": mismatch.AttemptsLeft,
				})
				return
			}
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeInvalidOTP)
		case errors.Is(err, service.ErrTooManyAttempts):
			abortWithError(c, http.StatusTooManyRequests, err.Error(), CodeRateLimited)
		case errors.Is(err, service.ErrUserAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error(), CodeDuplicateField)
		default:
			abortWithError(c, http.StatusInternalServerError, "Verification failed", CodeInternalError)
		}
		return
	}

	h.setAuthCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    MapUserToResponse(user),
	})
}

// ResendOTP issues a fresh code for a pending registration.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), req.TempData); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTempData):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		case errors.Is(err, service.ErrResendThrottled):
			abortWithError(c, http.StatusTooManyRequests, err.Error(), CodeRateLimited)
		case errors.Is(err, service.ErrMailDelivery):
			abortWithError(c, http.StatusInternalServerError, "Could not send verification email", CodeInternalError)
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not resend code", CodeInternalError)
		}
		return
	}

	respondMessage(c, http.StatusOK, "Verification code sent")
}

// Login authenticates and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationFailed):
			abortWithError(c, http.StatusUnauthorized, err.Error(), CodeUnauthorized)
		case errors.Is(err, service.ErrNotVerified):
			abortWithError(c, http.StatusForbidden, err.Error(), CodeVerificationNeeded)
		default:
			abortWithError(c, http.StatusInternalServerError, "Login failed", CodeInternalError)
		}
		return
	}

	h.setAuthCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    MapUserToResponse(user),
	})
}

// Logout clears the session cookie. The JWT itself simply ages out.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", h.secureCookie, true)
	respondMessage(c, http.StatusOK, "Logged out")
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load account", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, MapUserToResponse(user))
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookieName, token, h.cookieMaxAge, "/", "", h.secureCookie, true)
}
