package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubAuthService implements service.AuthService with overridable funcs.
type stubAuthService struct {
	initiateFunc func(ctx context.Context, name, email, phone, password string, role domain.Role) (string, error)
	verifyFunc   func(ctx context.Context, tempData, code string) (string, *domain.User, error)
	resendFunc   func(ctx context.Context, tempData string) error
	loginFunc    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) InitiateRegistration(ctx context.Context, name, email, phone, password string, role domain.Role) (string, error) {
	return s.initiateFunc(ctx, name, email, phone, password, role)
}

func (s *stubAuthService) VerifyRegistration(ctx context.Context, tempData, code string) (string, *domain.User, error) {
	return s.verifyFunc(ctx, tempData, code)
}

func (s *stubAuthService) ResendOTP(ctx context.Context, tempData string) error {
	return s.resendFunc(ctx, tempData)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFunc(ctx, email, password)
}

func (s *stubAuthService) GetJWTSecret() string { return "test-secret" }

var _ service.AuthService = (*stubAuthService)(nil)

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func authRouter(stub *stubAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(stub, time.Hour, false)
	router := gin.New()
	router.POST("/api/auth/register/initiate", handler.InitiateRegistration)
	router.POST("/api/auth/register/verify", handler.VerifyRegistration)
	router.POST("/api/auth/register/resend-otp", handler.ResendOTP)
	router.POST("/api/auth/login", handler.Login)
	return router
}

func TestInitiateRegistrationEndpoint(t *testing.T) {
	t.Run("returns tempData", func(t *testing.T) {
		router := authRouter(&stubAuthService{
			initiateFunc: func(ctx context.Context, name, email, phone, password string, role domain.Role) (string, error) {
				return "opaque-payload", nil
			},
		})

		rec := postJSON(t, router, "/api/auth/register/initiate", gin.H{
			"name": "Jane", "email": "jane@example.com", "phone": "+1555000111",
			"password": "secret123", "role": "member",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "opaque-payload", body["tempData"])
	})

	t.Run("duplicate account conflicts", func(t *testing.T) {
		router := authRouter(&stubAuthService{
			initiateFunc: func(ctx context.Context, name, email, phone, password string, role domain.Role) (string, error) {
				return "", service.ErrUserAlreadyExists
			},
		})

		rec := postJSON(t, router, "/api/auth/register/initiate", gin.H{
			"name": "Jane", "email": "jane@example.com", "phone": "+1555000111",
			"password": "secret123", "role": "member",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, CodeDuplicateField, decodeBody(t, rec)["code"])
	})

	t.Run("admin role fails binding", func(t *testing.T) {
		router := authRouter(&stubAuthService{})

		rec := postJSON(t, router, "/api/auth/register/initiate", gin.H{
			"name": "Eve", "email": "eve@example.com", "phone": "+1555000999",
			"password": "secret123", "role": "admin",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeValidationError, decodeBody(t, rec)["code"])
	})
}

func TestVerifyRegistrationEndpoint(t *testing.T) {
	t.Run("sets the session cookie on success", func(t *testing.T) {
		user := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleMember, IsVerified: true}
		router := authRouter(&stubAuthService{
			verifyFunc: func(ctx context.Context, tempData, code string) (string, *domain.User, error) {
				return "signed.jwt.token", user, nil
			},
		})

		rec := postJSON(t, router, "/api/auth/register/verify", gin.H{"tempData": "payload", "otp": "123456"})
		assert.Equal(t, http.StatusCreated, rec.Code)

		var sessionCookie *http.Cookie
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == AuthCookieName {
				sessionCookie = cookie
			}
		}
		require.NotNil(t, sessionCookie)
		assert.Equal(t, "signed.jwt.token", sessionCookie.Value)
		assert.True(t, sessionCookie.HttpOnly)
	})

	t.Run("wrong code carries the remaining attempts", func(t *testing.T) {
		router := authRouter(&stubAuthService{
			verifyFunc: func(ctx context.Context, tempData, code string) (string, *domain.User, error) {
				return "", nil, &service.OTPMismatchError{AttemptsLeft: 2}
			},
		})

		rec := postJSON(t, router, "/api/auth/register/verify", gin.H{"tempData": "payload", "otp": "000000"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, CodeInvalidOTP, body["code"])
		assert.Equal(t, float64(2), body["attemptsLeft"])
	})

	t.Run("attempt cap maps to 429", func(t *testing.T) {
		router := authRouter(&stubAuthService{
			verifyFunc: func(ctx context.Context, tempData, code string) (string, *domain.User, error) {
				return "", nil, service.ErrTooManyAttempts
			},
		})

		rec := postJSON(t, router, "/api/auth/register/verify", gin.H{"tempData": "payload", "otp": "000000"})
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, CodeRateLimited, decodeBody(t, rec)["code"])
	})

	t.Run("five-digit codes fail binding", func(t *testing.T) {
		router := authRouter(&stubAuthService{})

		rec := postJSON(t, router, "/api/auth/register/verify", gin.H{"tempData": "payload", "otp": "12345"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResendOTPEndpoint(t *testing.T) {
	router := authRouter(&stubAuthService{
		resendFunc: func(ctx context.Context, tempData string) error {
			return service.ErrResendThrottled
		},
	})

	rec := postJSON(t, router, "/api/auth/register/resend-otp", gin.H{"tempData": "payload"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, CodeRateLimited, decodeBody(t, rec)["code"])
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		router := authRouter(&stubAuthService{
			loginFunc: func(ctx context.Context, email, password string) (string, *domain.User, error) {
				return "", nil, service.ErrAuthenticationFailed
			},
		})

		rec := postJSON(t, router, "/api/auth/login", gin.H{"email": "jane@example.com", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, CodeUnauthorized, decodeBody(t, rec)["code"])
	})

	t.Run("unverified account", func(t *testing.T) {
		router := authRouter(&stubAuthService{
			loginFunc: func(ctx context.Context, email, password string) (string, *domain.User, error) {
				return "", nil, service.ErrNotVerified
			},
		})

		rec := postJSON(t, router, "/api/auth/login", gin.H{"email": "jane@example.com", "password": "secret123"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodeVerificationNeeded, decodeBody(t, rec)["code"])
	})

	t.Run("success returns the user DTO without the hash", func(t *testing.T) {
		user := &domain.User{
			ID:    primitive.NewObjectID(),
			Name:  "Jane",
			Email: "jane@example.com",
			Role:  domain.RoleMember,
		}
		router := authRouter(&stubAuthService{
			loginFunc: func(ctx context.Context, email, password string) (string, *domain.User, error) {
				return "signed.jwt.token", user, nil
			},
		})

		rec := postJSON(t, router, "/api/auth/login", gin.H{"email": "jane@example.com", "password": "secret123"})
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "signed.jwt.token", body["token"])
		userBody, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, user.ID.Hex(), userBody["id"])
		assert.NotContains(t, userBody, "passwordHash")
	})
}
