package api

import (
	"math"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes carried in the error envelope. Clients branch
// on these, the message is for humans.
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeAccessDenied         = "ACCESS_DENIED"
	CodeNotFound             = "RESOURCE_NOT_FOUND"
	CodeChatNotFound         = "CHAT_NOT_FOUND"
	CodeMessageNotFound      = "MESSAGE_NOT_FOUND"
	CodeDuplicateField       = "DUPLICATE_FIELD"
	CodeVerificationNeeded   = "VERIFICATION_REQUIRED"
	CodeInvalidOTP           = "INVALID_OTP"
	CodeOTPExpired           = "OTP_EXPIRED"
	CodeRateLimited          = "RATE_LIMITED"
	CodeSubscriptionRequired = "SUBSCRIPTION_REQUIRED"
	CodePaymentFailed        = "PAYMENT_FAILED"
	CodeRefundNotAllowed     = "REFUND_NOT_ALLOWED"
	CodeRefundWindowExpired  = "REFUND_WINDOW_EXPIRED"
	CodeDeleteTimeExpired    = "DELETE_TIME_EXPIRED"
	CodeMessageTooLong       = "MESSAGE_TOO_LONG"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Pagination echoes the page window plus the unpaginated totals.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func newPagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// respondOK wraps data in the success envelope.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondMessage is for operations whose outcome is just a confirmation.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// respondPage wraps a list plus its pagination block.
func respondPage(c *gin.Context, data interface{}, page, limit int, total int64) {
	c.JSON(200, gin.H{
		"success":    true,
		"data":       data,
		"pagination": newPagination(page, limit, total),
	})
}

// abortWithError writes the error envelope and stops the chain.
func abortWithError(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"code":    code,
	})
}
