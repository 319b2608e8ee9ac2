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
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentHandler covers the user payment history plus the admin payment
// console (listing, status overrides, refunds, reports).
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// --- Request Structs ---

type ProcessPaymentRequest struct {
	PlanID      string `json:"planId" binding:"required"`
	MockSuccess *bool  `json:"mockSuccess"`
	Gateway     string `json:"gateway"`
}

type UpdatePaymentStatusRequest struct {
	Status domain.PaymentStatus `json:"status" binding:"required,oneof=pending success failed refunded"`
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required,min=3"`
}

// parsePaymentFilter reads the admin list/report query parameters.
func parsePaymentFilter(c *gin.Context) (repository.PaymentFilter, error) {
	var filter repository.PaymentFilter

	if raw := c.Query("userId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid userId")
		}
		filter.UserID = id
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.PaymentStatus(raw)
		if !status.IsValid() {
			return filter, fmt.Errorf("invalid status")
		}
		filter.Status = status
	}
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid start, expected RFC3339")
		}
		filter.Start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid end, expected RFC3339")
		}
		filter.End = &t
	}
	return filter, nil
}

// --- Handler Methods ---

// Process purchases a plan through the mock gateway. A failed attempt is
// still recorded and returned with the error.
func (h *PaymentHandler) Process(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId", CodeValidationError)
		return
	}

	// Absent flag means the mock gateway approves.
	mockSuccess := true
	if req.MockSuccess != nil {
		mockSuccess = *req.MockSuccess
	}

	result, err := h.paymentService.ProcessPayment(c.Request.Context(), userID, planID, mockSuccess, req.Gateway)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentFailed):
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"success": false,
				"message": err.Error(),
				"code":    CodePaymentFailed,
				"payment": result.Payment,
			})
		case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		default:
			abortWithError(c, http.StatusInternalServerError, "Payment processing failed", CodeInternalError)
		}
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"payment": result.Payment,
		"user":    MapUserToResponse(result.User),
	})
}

// History pages through the caller's own payments.
func (h *PaymentHandler) History(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}

	page, limit := parsePaging(c)
	payments, total, err := h.paymentService.History(c.Request.Context(), userID, page, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load payments", CodeInternalError)
		return
	}
	respondPage(c, payments, page, limit, total)
}

// Get returns one of the caller's payments.
func (h *PaymentHandler) Get(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify account", CodeInternalError)
		return
	}
	paymentID, ok := parseObjectIDParam(c, "paymentId")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetForUser(c.Request.Context(), paymentID, userID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load payment", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, payment)
}

// --- Admin payment console ---

// List pages through all payments, filterable by user, status and period.
func (h *PaymentHandler) List(c *gin.Context) {
	filter, err := parsePaymentFilter(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		return
	}

	page, limit := parsePaging(c)
	payments, total, err := h.paymentService.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load payments", CodeInternalError)
		return
	}
	respondPage(c, payments, page, limit, total)
}

// UpdateStatus force-sets a payment's status.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	paymentID, ok := parseObjectIDParam(c, "paymentId")
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	payment, err := h.paymentService.UpdateStatus(c.Request.Context(), paymentID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		case errors.Is(err, service.ErrInvalidStatus):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update payment", CodeInternalError)
		}
		return
	}
	respondOK(c, http.StatusOK, payment)
}

// Refund refunds a successful payment inside the refund window.
func (h *PaymentHandler) Refund(c *gin.Context) {
	paymentID, ok := parseObjectIDParam(c, "paymentId")
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err), CodeValidationError)
		return
	}

	payment, err := h.paymentService.Refund(c.Request.Context(), paymentID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error(), CodeNotFound)
		case errors.Is(err, service.ErrRefundNotAllowed):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeRefundNotAllowed)
		case errors.Is(err, service.ErrRefundWindowExpired):
			abortWithError(c, http.StatusBadRequest, err.Error(), CodeRefundWindowExpired)
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to refund payment", CodeInternalError)
		}
		return
	}
	respondOK(c, http.StatusOK, payment)
}

// MonthlyReport aggregates payments by month.
func (h *PaymentHandler) MonthlyReport(c *gin.Context) {
	filter, err := parsePaymentFilter(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		return
	}

	report, err := h.paymentService.MonthlyReport(c.Request.Context(), filter.Start, filter.End)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build report", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, report)
}

// StatusStats aggregates matching payments by status.
func (h *PaymentHandler) StatusStats(c *gin.Context) {
	filter, err := parsePaymentFilter(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), CodeValidationError)
		return
	}

	stats, err := h.paymentService.StatusStats(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build stats", CodeInternalError)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// CheckExpired sweeps lapsed subscriptions off every user record and reports
// which accounts were affected.
func (h *PaymentHandler) CheckExpired(c *gin.Context) {
	expired, cleared, err := h.paymentService.ClearExpiredSubscriptions(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to clear expired subscriptions", CodeInternalError)
		return
	}

	responses := make([]UserResponse, len(expired))
	for i := range expired {
		responses[i] = MapUserToResponse(&expired[i])
	}
	respondOK(c, http.StatusOK, gin.H{"cleared": cleared, "expired": responses})
}
