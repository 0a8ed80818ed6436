package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	Address         string `json:"address,omitempty"`
	Phone           string `json:"phone,omitempty"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	// Username accepts either the username or the email address.
	Username string `json:"username"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
}

// AuthResponse carries the success flag, a human-readable message, and the
// operation extras the frontend routes on (show_otp, show_reset, redirect).
type AuthResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Email     string        `json:"email,omitempty"`
	ShowOTP   bool          `json:"show_otp,omitempty"`
	ShowReset bool          `json:"show_reset,omitempty"`
	Redirect  string        `json:"redirect,omitempty"`
	Token     string        `json:"token,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	User      *UserResponse `json:"user,omitempty"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
	ShowOTP bool   `json:"show_otp,omitempty"`
}
