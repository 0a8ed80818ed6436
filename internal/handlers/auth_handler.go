package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/neighbourhood-connect/backend/internal/dto"
	"github.com/neighbourhood-connect/backend/internal/middleware"
	"github.com/neighbourhood-connect/backend/internal/models"
	"github.com/neighbourhood-connect/backend/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
	sessions *services.SessionService
}

func NewAuthHandler(accounts *services.AccountService, sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.accounts.Register(req.Username, req.Email, req.Password, req.ConfirmPassword, req.FullName, req.Address, req.Phone)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(),
			})
		case errors.Is(err, services.ErrAccountTaken):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Username or email already exists",
			})
		case errors.Is(err, services.ErrTooManyRequests):
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many attempts. Please try again later.",
			})
		case errors.Is(err, services.ErrMailDelivery):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to send verification email. Please try again.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Registration failed. Please try again.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		Success: true,
		Message: "Registration successful! Please check your email for the verification code.",
		Email:   user.Email,
		ShowOTP: true,
	})
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Email == "" || req.OTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Email and OTP are required",
		})
	}

	user, token, session, err := h.accounts.VerifyOTP(req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		case errors.Is(err, services.ErrAlreadyVerified):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Email is already verified",
			})
		case errors.Is(err, services.ErrOTPExpired):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "OTP has expired. Please request a new one.",
			})
		case errors.Is(err, services.ErrInvalidOTP):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid OTP. Please check and try again.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Verification failed. Please try again.",
		})
	}

	return c.JSON(dto.AuthResponse{
		Success:   true,
		Message:   "Email verified successfully! Welcome to Neighbourhood Connect.",
		Redirect:  "/dashboard",
		Token:     token,
		ExpiresAt: &session.ExpiresAt,
		User:      userResponse(user),
	})
}

func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req dto.ResendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Email is required",
		})
	}

	if err := h.accounts.ResendOTP(req.Email); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		case errors.Is(err, services.ErrAlreadyVerified):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Email is already verified",
			})
		case errors.Is(err, services.ErrTooManyRequests):
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many attempts. Please try again later.",
			})
		case errors.Is(err, services.ErrMailDelivery):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to send verification email. Please try again.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to resend OTP. Please try again.",
		})
	}

	return c.JSON(dto.AuthResponse{
		Success: true,
		Message: "New verification code sent to your email.",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, token, session, err := h.accounts.Login(req.Username, req.Password)
	if err != nil {
		var verr *services.ValidationError
		var unverified *services.UnverifiedError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(),
			})
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid username or password",
			})
		case errors.As(err, &unverified):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Please verify your email before logging in.",
				Email:   unverified.Email,
				ShowOTP: true,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Login failed. Please try again.",
		})
	}

	return c.JSON(dto.AuthResponse{
		Success:   true,
		Message:   "Login successful",
		Redirect:  "/dashboard",
		Token:     token,
		ExpiresAt: &session.ExpiresAt,
		User:      userResponse(user),
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Destroy(middleware.SessionToken(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to logout",
		})
	}
	return c.JSON(dto.AuthResponse{
		Success:  true,
		Message:  "Logged out successfully",
		Redirect: "/",
	})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	const genericMessage = "If an account with this email exists, you will receive a password reset code shortly."

	found, err := h.accounts.ForgotPassword(req.Email)
	if err != nil {
		var verr *services.ValidationError
		var unverified *services.UnverifiedError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(),
			})
		case errors.As(err, &unverified):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Please verify your email first before resetting your password.",
			})
		case errors.Is(err, services.ErrTooManyRequests):
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many attempts. Please try again later.",
			})
		case errors.Is(err, services.ErrMailDelivery):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to send reset code. Please try again.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process request. Please try again.",
		})
	}

	resp := dto.AuthResponse{Success: true, Message: genericMessage}
	if found {
		resp.Email = req.Email
		resp.ShowReset = true
	}
	return c.JSON(resp)
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "All fields are required",
		})
	}

	err := h.accounts.ResetPassword(req.Email, req.OTP, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		var verr *services.ValidationError
		var unverified *services.UnverifiedError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(),
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		case errors.As(err, &unverified):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Please verify your email first",
			})
		case errors.Is(err, services.ErrOTPExpired):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Reset code has expired. Please request a new one.",
			})
		case errors.Is(err, services.ErrInvalidOTP):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid reset code. Please check and try again.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Password reset failed. Please try again.",
		})
	}

	return c.JSON(dto.AuthResponse{
		Success:  true,
		Message:  "Password reset successful! You can now login with your new password.",
		Redirect: "/login",
	})
}

func userResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}
}
