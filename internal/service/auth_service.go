package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/email"
	"gymsync/backend/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email or phone already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrNotVerified          = errors.New("email not verified")
	ErrInvalidOTP           = errors.New("invalid verification code")
	ErrOTPExpired           = errors.New("verification code expired or not found")
	ErrTooManyAttempts      = errors.New("too many failed verification attempts")
	ErrResendThrottled      = errors.New("verification code was sent recently, wait before retrying")
	ErrInvalidTempData      = errors.New("invalid or corrupted registration data")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrMailDelivery         = errors.New("failed to send verification email")
)

// OTPResendInterval is the minimum gap between two codes for the same email.
const OTPResendInterval = time.Minute

// OTPMismatchError reports a wrong code together with how many attempts the
// client still has before the stored code is burned. It unwraps to
// ErrInvalidOTP so callers can keep matching with errors.Is.
type OTPMismatchError struct {
	AttemptsLeft int
}

func (e *OTPMismatchError) Error() string {
	return fmt.Sprintf("invalid verification code, %d attempt(s) left", e.AttemptsLeft)
}

func (e *OTPMismatchError) Unwrap() error { return ErrInvalidOTP }

// AuthService drives the two-step registration flow and login.
//
// Registration never touches the users collection until the email is
// verified: InitiateRegistration hands the client an opaque payload which
// must be returned to VerifyRegistration together with the emailed code.
type AuthService interface {
	InitiateRegistration(ctx context.Context, name, email, phone, password string, role domain.Role) (tempData string, err error)
	VerifyRegistration(ctx context.Context, tempData, code string) (token string, user *domain.User, err error)
	ResendOTP(ctx context.Context, tempData string) error
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	GetJWTSecret() string
}

// pendingRegistration is the payload round-tripped through the client
// between the initiate and verify steps. Only the bcrypt hash travels,
// never the password.
type pendingRegistration struct {
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	PasswordHash string      `json:"passwordHash"`
	Role         domain.Role `json:"role"`
}

type authService struct {
	userRepo      repository.UserRepository
	otpRepo       repository.OTPRepository
	mailer        email.Mailer
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, otpRepo repository.OTPRepository, mailer email.Mailer, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 168 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		otpRepo:       otpRepo,
		mailer:        mailer,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// InitiateRegistration validates the signup data, emails a verification code
// and returns the pending payload the client must echo back.
func (s *authService) InitiateRegistration(ctx context.Context, name, emailAddr, phone, password string, role domain.Role) (string, error) {
	if name == "" || emailAddr == "" || phone == "" || password == "" {
		return "", errors.New("name, email, phone, and password cannot be empty")
	}
	// Admin accounts are provisioned out of band, never via signup.
	if role != domain.RoleMember && role != domain.RoleTrainer {
		return "", errors.New("role must be member or trainer")
	}

	_, err := s.userRepo.GetByEmailOrPhone(ctx, emailAddr, phone)
	if err == nil {
		return "", ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}

	if err := s.issueOTP(ctx, emailAddr, name); err != nil {
		return "", err
	}

	pending := pendingRegistration{
		Name:         name,
		Email:        emailAddr,
		Phone:        phone,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	return encodePending(pending)
}

// VerifyRegistration checks the emailed code and, on success, creates the
// verified user and logs them in.
func (s *authService) VerifyRegistration(ctx context.Context, tempData, code string) (string, *domain.User, error) {
	pending, err := decodePending(tempData)
	if err != nil {
		return "", nil, ErrInvalidTempData
	}
	if code == "" {
		return "", nil, ErrInvalidOTP
	}

	now := time.Now().UTC()
	otp, err := s.otpRepo.GetActiveByEmail(ctx, pending.Email, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrOTPExpired
		}
		return "", nil, err
	}

	// The cap is checked before the code is compared: once the allowance is
	// spent the stored code is purged and the client has to restart.
	if otp.Attempts >= domain.OTPMaxAttempts {
		if delErr := s.otpRepo.DeleteByEmail(ctx, pending.Email); delErr != nil {
			log.Printf("WARN: failed to purge OTPs for %s: %v", pending.Email, delErr)
		}
		return "", nil, ErrTooManyAttempts
	}

	if otp.Code != code {
		attempts, incErr := s.otpRepo.IncrementAttempts(ctx, otp.ID)
		if incErr != nil {
			return "", nil, incErr
		}
		left := domain.OTPMaxAttempts - attempts
		if left < 0 {
			left = 0
		}
		return "", nil, &OTPMismatchError{AttemptsLeft: left}
	}

	// Code accepted, the OTP has served its purpose.
	if err := s.otpRepo.DeleteByEmail(ctx, pending.Email); err != nil {
		log.Printf("WARN: failed to purge OTPs for %s: %v", pending.Email, err)
	}

	user := &domain.User{
		Name:         pending.Name,
		Email:        pending.Email,
		Phone:        pending.Phone,
		PasswordHash: pending.PasswordHash,
		Role:         pending.Role,
		IsVerified:   true,
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "", nil, ErrUserAlreadyExists
		}
		return "", nil, err
	}
	user.ID = userID

	// Best effort, the account exists whether or not the greeting lands.
	if err := s.mailer.SendWelcome(user.Email, user.Name); err != nil {
		log.Printf("WARN: failed to send welcome email to %s: %v", user.Email, err)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// ResendOTP issues a fresh code for a pending registration, at most once per
// OTPResendInterval.
func (s *authService) ResendOTP(ctx context.Context, tempData string) error {
	pending, err := decodePending(tempData)
	if err != nil {
		return ErrInvalidTempData
	}

	now := time.Now().UTC()
	if _, err := s.otpRepo.GetCreatedSince(ctx, pending.Email, now.Add(-OTPResendInterval)); err == nil {
		return ErrResendThrottled
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return s.issueOTP(ctx, pending.Email, pending.Name)
}

// issueOTP replaces any previous codes for the email and mails the new one.
func (s *authService) issueOTP(ctx context.Context, emailAddr, name string) error {
	if err := s.otpRepo.DeleteByEmail(ctx, emailAddr); err != nil {
		return err
	}

	code, err := generateOTPCode()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	otp := &domain.OTP{
		Email:     emailAddr,
		Code:      code,
		ExpiresAt: now.Add(domain.OTPExpiry),
	}
	if _, err := s.otpRepo.Create(ctx, otp); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(emailAddr, name, code); err != nil {
		log.Printf("ERROR: failed to send OTP email to %s: %v", emailAddr, err)
		return ErrMailDelivery
	}
	return nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, emailAddr, password string) (string, *domain.User, error) {
	if emailAddr == "" || password == "" {
		return "", nil, errors.New("email and password cannot be empty")
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	if !user.IsVerified {
		return "", nil, ErrNotVerified
	}

	now := time.Now().UTC()
	if err := s.userRepo.SetLastLogin(ctx, user.ID, now); err != nil {
		log.Printf("WARN: failed to record login time for %s: %v", user.Email, err)
	}
	user.LastLoginAt = &now

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "gymsync",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication.
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}

// generateOTPCode produces a 6-digit code with crypto/rand.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func encodePending(p pendingRegistration) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func decodePending(tempData string) (pendingRegistration, error) {
	var p pendingRegistration
	raw, err := base64.StdEncoding.DecodeString(tempData)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, err
	}
	if p.Email == "" || p.PasswordHash == "" || p.Role == "" {
		return p, errors.New("incomplete registration data")
	}
	return p, nil
}
