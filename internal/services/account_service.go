package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	mailer "github.com/neighbourhood-connect/backend/internal/mail"
	"github.com/neighbourhood-connect/backend/internal/models"
	"github.com/neighbourhood-connect/backend/internal/ratelimit"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAccountTaken       = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrOTPExpired         = errors.New("verification code has expired")
	ErrInvalidOTP         = errors.New("invalid verification code")
	ErrMailDelivery       = errors.New("failed to send email")
	ErrTooManyRequests    = errors.New("too many attempts, please try again later")
)

// AccountService owns user creation, password hashing, OTP issuance/expiry,
// and the unverified-to-verified transition.
type AccountService struct {
	db       *gorm.DB
	mailer   mailer.Mailer
	sessions *SessionService
	limiter  *ratelimit.Limiter
	otpTTL   time.Duration
}

func NewAccountService(db *gorm.DB, m mailer.Mailer, sessions *SessionService, limiter *ratelimit.Limiter, otpTTL time.Duration) *AccountService {
	return &AccountService{
		db:       db,
		mailer:   m,
		sessions: sessions,
		limiter:  limiter,
		otpTTL:   otpTTL,
	}
}

// Register creates an unverified account and emails the verification code.
// If the email cannot be delivered the new row is deleted and the whole
// registration must be resubmitted.
func (s *AccountService) Register(username, email, password, confirmPassword, fullName, address, phone string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	var problems []string
	if username == "" {
		problems = append(problems, "Username is required")
	} else if len(username) < 3 {
		problems = append(problems, "Username must be at least 3 characters long")
	}
	if email == "" {
		problems = append(problems, "Email is required")
	} else if !validEmail(email) {
		problems = append(problems, "Please enter a valid email address")
	}
	if password == "" {
		problems = append(problems, "Password is required")
	} else if len(password) < 6 {
		problems = append(problems, "Password must be at least 6 characters long")
	}
	if password != confirmPassword {
		problems = append(problems, "Passwords do not match")
	}
	if fullName == "" {
		problems = append(problems, "Full name is required")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	if !s.limiter.Allow(email) {
		return nil, ErrTooManyRequests
	}

	var existing models.User
	err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, ErrAccountTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}
	expiry := time.Now().Add(s.otpTTL)

	user := models.User{
		ID:         uuid.New(),
		Username:   username,
		Email:      email,
		Password:   string(hash),
		FullName:   fullName,
		Address:    strings.TrimSpace(address),
		Phone:      strings.TrimSpace(phone),
		OTPCode:    &code,
		OTPExpiry:  &expiry,
		IsVerified: false,
		IsActive:   true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	msg := mailer.OTPVerification(user.FullName, code)
	if err := s.mailer.Send(user.Email, user.FullName, msg.Subject, msg.HTMLBody, msg.TextBody); err != nil {
		// Registration is rolled back: the same request must be resubmitted.
		if delErr := s.db.Delete(&user).Error; delErr != nil {
			slog.Error("failed to roll back registration", "user_id", user.ID, "error", delErr)
		}
		slog.Error("verification email failed", "email", user.Email, "error", err)
		return nil, ErrMailDelivery
	}

	return &user, nil
}

// VerifyOTP confirms the email and logs the user in. Verification and login
// are one transition: a session is created on success.
func (s *AccountService) VerifyOTP(email, code string) (*models.User, string, *models.Session, error) {
	user, err := s.findActiveByEmail(email)
	if err != nil {
		return nil, "", nil, err
	}
	if user.IsVerified {
		return nil, "", nil, ErrAlreadyVerified
	}
	if user.OTPExpiry == nil || time.Now().After(*user.OTPExpiry) {
		return nil, "", nil, ErrOTPExpired
	}
	if user.OTPCode == nil || *user.OTPCode != code {
		return nil, "", nil, ErrInvalidOTP
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_verified":       true,
		"otp_code":          nil,
		"otp_expiry":        nil,
		"email_verified_at": now,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, "", nil, fmt.Errorf("failed to mark user verified: %w", err)
	}
	user.IsVerified = true
	user.OTPCode = nil
	user.OTPExpiry = nil
	user.EmailVerifiedAt = &now

	token, session, err := s.sessions.Create(user.ID)
	if err != nil {
		return nil, "", nil, err
	}
	return user, token, session, nil
}

// ResendOTP overwrites the outstanding code, invalidating the previous one
// immediately, and re-sends the verification email.
func (s *AccountService) ResendOTP(email string) error {
	if !s.limiter.Allow(email) {
		return ErrTooManyRequests
	}

	user, err := s.findActiveByEmail(email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	expiry := time.Now().Add(s.otpTTL)

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"otp_code":   code,
		"otp_expiry": expiry,
	}).Error; err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	msg := mailer.OTPVerification(user.FullName, code)
	if err := s.mailer.Send(user.Email, user.FullName, msg.Subject, msg.HTMLBody, msg.TextBody); err != nil {
		slog.Error("verification email failed", "email", user.Email, "error", err)
		return ErrMailDelivery
	}
	return nil
}

// Login looks up an active user by username or email. The error does not
// distinguish a missing account from a wrong password.
func (s *AccountService) Login(usernameOrEmail, password string) (*models.User, string, *models.Session, error) {
	usernameOrEmail = strings.TrimSpace(usernameOrEmail)
	if usernameOrEmail == "" || password == "" {
		return nil, "", nil, &ValidationError{Problems: []string{"Username and password are required"}}
	}

	var user models.User
	err := s.db.Where("(username = ? OR email = ?) AND is_active = ?", usernameOrEmail, usernameOrEmail, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, "", nil, &UnverifiedError{Email: user.Email}
	}

	token, session, err := s.sessions.Create(user.ID)
	if err != nil {
		return nil, "", nil, err
	}
	return &user, token, session, nil
}

// ForgotPassword issues a reset code for verified accounts. The found return
// lets the handler send the same generic message whether or not the email
// matched, to avoid account enumeration.
func (s *AccountService) ForgotPassword(email string) (found bool, err error) {
	email = strings.TrimSpace(email)
	if email == "" || !validEmail(email) {
		return false, &ValidationError{Problems: []string{"Please enter a valid email address"}}
	}

	if !s.limiter.Allow(email) {
		return false, ErrTooManyRequests
	}

	user, err := s.findActiveByEmail(email)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !user.IsVerified {
		return true, &UnverifiedError{Email: user.Email}
	}

	code, err := generateOTP()
	if err != nil {
		return true, fmt.Errorf("failed to generate reset code: %w", err)
	}
	expiry := time.Now().Add(s.otpTTL)

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"otp_code":   code,
		"otp_expiry": expiry,
	}).Error; err != nil {
		return true, fmt.Errorf("failed to store reset code: %w", err)
	}

	msg := mailer.PasswordReset(user.FullName, code)
	if err := s.mailer.Send(user.Email, user.FullName, msg.Subject, msg.HTMLBody, msg.TextBody); err != nil {
		slog.Error("reset email failed", "email", user.Email, "error", err)
		return true, ErrMailDelivery
	}
	return true, nil
}

// ResetPassword checks the reset code with the same semantics as VerifyOTP,
// then stores the new hash and clears the code. No session is created.
func (s *AccountService) ResetPassword(email, code, newPassword, confirmPassword string) error {
	var problems []string
	if newPassword == "" {
		problems = append(problems, "Password is required")
	} else if len(newPassword) < 6 {
		problems = append(problems, "Password must be at least 6 characters long")
	}
	if newPassword != confirmPassword {
		problems = append(problems, "Passwords do not match")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	user, err := s.findActiveByEmail(email)
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return &UnverifiedError{Email: user.Email}
	}
	if user.OTPExpiry == nil || time.Now().After(*user.OTPExpiry) {
		return ErrOTPExpired
	}
	if user.OTPCode == nil || *user.OTPCode != code {
		return ErrInvalidOTP
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"password":   string(hash),
		"otp_code":   nil,
		"otp_expiry": nil,
	}).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *AccountService) findActiveByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ? AND is_active = ?", strings.TrimSpace(email), true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// generateOTP returns a uniformly random six-digit zero-padded code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
