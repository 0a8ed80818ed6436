package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/neighbourhood-connect/backend/internal/config"
	"github.com/neighbourhood-connect/backend/internal/dto"
	"github.com/neighbourhood-connect/backend/internal/models"
	"github.com/neighbourhood-connect/backend/internal/services"
)

// JWTProtected rejects requests whose session token is missing, malformed,
// or carries a bad signature. The session row itself is checked by
// LoadSession, which must run after this.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "User not authenticated",
			})
		},
	})
}

// LoadSession validates the server-side session row and stores the current
// user in context. Sessions die on expiry, logout, or when the user stops
// being active and verified.
func LoadSession(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "User not authenticated",
			})
		}

		user, err := sessions.Validate(token.Raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Session expired or invalid",
			})
		}

		c.Locals("current_user", user)
		c.Locals("session_token", token.Raw)
		return c.Next()
	}
}

// CurrentUser returns the user loaded by LoadSession.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("current_user").(*models.User)
	if !ok {
		return nil, errors.New("no user in context")
	}
	return user, nil
}

// SessionToken returns the raw token for the current request.
func SessionToken(c *fiber.Ctx) string {
	token, _ := c.Locals("session_token").(string)
	return token
}
