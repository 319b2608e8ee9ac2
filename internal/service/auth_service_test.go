package service

import (
	"context"
	"testing"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/mocks"
	"gymsync/backend/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

func newAuthFixture() (*mocks.MockUserRepository, *mocks.MockOTPRepository, *mocks.MockMailer, AuthService) {
	userRepo := mocks.NewMockUserRepository()
	otpRepo := mocks.NewMockOTPRepository()
	mailer := mocks.NewMockMailer()
	svc := NewAuthService(userRepo, otpRepo, mailer, testJWTSecret, time.Hour)
	return userRepo, otpRepo, mailer, svc
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func pendingPayload(t *testing.T, email string) string {
	t.Helper()
	tempData, err := encodePending(pendingRegistration{
		Name:         "Jane",
		Email:        email,
		Phone:        "+1555000111",
		PasswordHash: mustHash(t, "secret123"),
		Role:         domain.RoleMember,
	})
	require.NoError(t, err)
	return tempData
}

func TestInitiateRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("sends OTP and returns a decodable payload", func(t *testing.T) {
		_, _, mailer, svc := newAuthFixture()

		tempData, err := svc.InitiateRegistration(ctx, "Jane", "jane@example.com", "+1555000111", "secret123", domain.RoleMember)
		require.NoError(t, err)
		require.NotEmpty(t, tempData)

		pending, err := decodePending(tempData)
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", pending.Email)
		assert.Equal(t, domain.RoleMember, pending.Role)
		// Only the hash travels in the payload.
		assert.NotEqual(t, "secret123", pending.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(pending.PasswordHash), []byte("secret123")))

		require.Len(t, mailer.SentOTPs, 1)
		assert.Equal(t, "jane@example.com", mailer.SentOTPs[0].To)
		assert.Len(t, mailer.SentOTPs[0].Code, 6)
	})

	t.Run("rejects a taken email or phone", func(t *testing.T) {
		userRepo, _, mailer, svc := newAuthFixture()
		userRepo.GetByEmailOrPhoneFunc = func(ctx context.Context, email, phone string) (*domain.User, error) {
			return &domain.User{Email: email}, nil
		}

		_, err := svc.InitiateRegistration(ctx, "Jane", "jane@example.com", "+1555000111", "secret123", domain.RoleMember)
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		assert.Empty(t, mailer.SentOTPs)
	})

	t.Run("rejects an admin role", func(t *testing.T) {
		_, _, _, svc := newAuthFixture()

		_, err := svc.InitiateRegistration(ctx, "Jane", "jane@example.com", "+1555000111", "secret123", domain.RoleAdmin)
		assert.Error(t, err)
	})
}

func TestVerifyRegistration(t *testing.T) {
	ctx := context.Background()

	activeOTP := func(code string) *domain.OTP {
		return &domain.OTP{
			ID:        primitive.NewObjectID(),
			Email:     "jane@example.com",
			Code:      code,
			ExpiresAt: time.Now().UTC().Add(domain.OTPExpiry),
		}
	}

	t.Run("creates a verified user and returns a token", func(t *testing.T) {
		userRepo, otpRepo, mailer, svc := newAuthFixture()
		otpRepo.GetActiveByEmailFunc = func(ctx context.Context, email string, now time.Time) (*domain.OTP, error) {
			return activeOTP("123456"), nil
		}
		var created *domain.User
		userRepo.CreateFunc = func(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
			created = user
			id := primitive.NewObjectID()
			user.ID = id
			return id, nil
		}
		var purged bool
		otpRepo.DeleteByEmailFunc = func(ctx context.Context, email string) error {
			purged = true
			return nil
		}

		token, user, err := svc.VerifyRegistration(ctx, pendingPayload(t, "jane@example.com"), "123456")
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.True(t, created.IsVerified)
		assert.True(t, purged)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Empty(t, user.PasswordHash)
		assert.Equal(t, []string{"jane@example.com"}, mailer.SentWelcomes)

		claims := &jwtClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
			return []byte(testJWTSecret), nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)
		assert.Equal(t, user.ID.Hex(), claims.UserID)
		assert.Equal(t, domain.RoleMember, claims.Role)
		assert.Equal(t, "gymsync", claims.Issuer)
	})

	t.Run("wrong code counts an attempt and reports the remainder", func(t *testing.T) {
		_, otpRepo, _, svc := newAuthFixture()
		otpRepo.GetActiveByEmailFunc = func(ctx context.Context, email string, now time.Time) (*domain.OTP, error) {
			return activeOTP("123456"), nil
		}
		otpRepo.IncrementAttemptsFunc = func(ctx context.Context, id primitive.ObjectID) (int, error) {
			return 1, nil
		}

		_, _, err := svc.VerifyRegistration(ctx, pendingPayload(t, "jane@example.com"), "000000")
		assert.ErrorIs(t, err, ErrInvalidOTP)
		var mismatch *OTPMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, domain.OTPMaxAttempts-1, mismatch.AttemptsLeft)
	})

	t.Run("third wrong attempt still reads as a mismatch", func(t *testing.T) {
		_, otpRepo, _, svc := newAuthFixture()
		otp := activeOTP("123456")
		otp.Attempts = domain.OTPMaxAttempts - 1
		otpRepo.GetActiveByEmailFunc = func(ctx context.Context, email string, now time.Time) (*domain.OTP, error) {
			return otp, nil
		}
		otpRepo.IncrementAttemptsFunc = func(ctx context.Context, id primitive.ObjectID) (int, error) {
			return domain.OTPMaxAttempts, nil
		}
		otpRepo.DeleteByEmailFunc = func(ctx context.Context, email string) error {
			t.Fatal("a mismatch below the cap must not purge the code")
			return nil
		}

		_, _, err := svc.VerifyRegistration(ctx, pendingPayload(t, "jane@example.com"), "000000")
		assert.ErrorIs(t, err, ErrInvalidOTP)
		var mismatch *OTPMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 0, mismatch.AttemptsLeft)
	})

	t.Run("fourth attempt hits the cap before the code is compared", func(t *testing.T) {
		_, otpRepo, _, svc := newAuthFixture()
		otp := activeOTP("123456")
		otp.Attempts = domain.OTPMaxAttempts
		otpRepo.GetActiveByEmailFunc = func(ctx context.Context, email string, now time.Time) (*domain.OTP, error) {
			return otp, nil
		}
		otpRepo.IncrementAttemptsFunc = func(ctx context.Context, id primitive.ObjectID) (int, error) {
			t.Fatal("the cap check must run before any further counting")
			return 0, nil
		}
		var purged bool
		otpRepo.DeleteByEmailFunc = func(ctx context.Context, email string) error {
			purged = true
			return nil
		}

		// Even the correct code is refused once the allowance is spent.
		_, _, err := svc.VerifyRegistration(ctx, pendingPayload(t, "jane@example.com"), "123456")
		assert.ErrorIs(t, err, ErrTooManyAttempts)
		assert.True(t, purged)
	})

	t.Run("no active code reads as expired", func(t *testing.T) {
		_, _, _, svc := newAuthFixture()

		_, _, err := svc.VerifyRegistration(ctx, pendingPayload(t, "jane@example.com"), "123456")
		assert.ErrorIs(t, err, ErrOTPExpired)
	})

	t.Run("rejects corrupted temp data", func(t *testing.T) {
		_, _, _, svc := newAuthFixture()

		_, _, err := svc.VerifyRegistration(ctx, "not-base64!!!", "123456")
		assert.ErrorIs(t, err, ErrInvalidTempData)
	})

	t.Run("race with a concurrent signup surfaces the conflict", func(t *testing.T) {
		userRepo, otpRepo, _, svc := newAuthFixture()
		otpRepo.GetActiveByEmailFunc = func(ctx context.Context, email string, now time.Time) (*domain.OTP, error) {
			return activeOTP("123456"), nil
		}
		userRepo.CreateFunc = func(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
			return primitive.NilObjectID, repository.ErrConflict
		}

		_, _, err := svc.VerifyRegistration(ctx, pendingPayload(t, "jane@example.com"), "123456")
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestResendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("throttled within the resend interval", func(t *testing.T) {
		_, otpRepo, mailer, svc := newAuthFixture()
		otpRepo.GetCreatedSinceFunc = func(ctx context.Context, email string, since time.Time) (*domain.OTP, error) {
			return &domain.OTP{Email: email}, nil
		}

		err := svc.ResendOTP(ctx, pendingPayload(t, "jane@example.com"))
		assert.ErrorIs(t, err, ErrResendThrottled)
		assert.Empty(t, mailer.SentOTPs)
	})

	t.Run("issues a fresh code after the interval", func(t *testing.T) {
		_, _, mailer, svc := newAuthFixture()

		err := svc.ResendOTP(ctx, pendingPayload(t, "jane@example.com"))
		require.NoError(t, err)
		require.Len(t, mailer.SentOTPs, 1)
		assert.Equal(t, "jane@example.com", mailer.SentOTPs[0].To)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	storedUser := func(t *testing.T, verified bool) *domain.User {
		return &domain.User{
			ID:           primitive.NewObjectID(),
			Name:         "Jane",
			Email:        "jane@example.com",
			PasswordHash: mustHash(t, "secret123"),
			Role:         domain.RoleMember,
			IsVerified:   verified,
		}
	}

	t.Run("success returns a token and scrubs the hash", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		userRepo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
			return storedUser(t, true), nil
		}
		var loginRecorded bool
		userRepo.SetLastLoginFunc = func(ctx context.Context, id primitive.ObjectID, at time.Time) error {
			loginRecorded = true
			return nil
		}

		token, user, err := svc.Login(ctx, "jane@example.com", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Empty(t, user.PasswordHash)
		assert.NotNil(t, user.LastLoginAt)
		assert.True(t, loginRecorded)
	})

	t.Run("unknown email and wrong password fail the same way", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()

		_, _, err := svc.Login(ctx, "nobody@example.com", "secret123")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)

		userRepo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
			return storedUser(t, true), nil
		}
		_, _, err = svc.Login(ctx, "jane@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("unverified accounts cannot log in", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		userRepo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
			return storedUser(t, false), nil
		}

		_, _, err := svc.Login(ctx, "jane@example.com", "secret123")
		assert.ErrorIs(t, err, ErrNotVerified)
	})
}
