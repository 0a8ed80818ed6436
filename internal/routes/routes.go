package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/neighbourhood-connect/backend/internal/config"
	"github.com/neighbourhood-connect/backend/internal/handlers"
	"github.com/neighbourhood-connect/backend/internal/middleware"
	"github.com/neighbourhood-connect/backend/internal/services"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	sessions *services.SessionService,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	rsvpHandler *handlers.RSVPHandler,
	notificationHandler *handlers.NotificationHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth routes are public.
	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/resend-otp", authHandler.ResendOTP)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Protected routes: a valid token AND a live session row are required.
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.LoadSession(sessions))

	protected.Post("/auth/logout", authHandler.Logout)

	protected.Get("/dashboard/stats", eventHandler.DashboardStats)

	protected.Get("/events", eventHandler.ListUpcoming)
	protected.Post("/events", eventHandler.Create)
	protected.Post("/events/:id/join", eventHandler.Join)
	protected.Delete("/events/:id/join", eventHandler.Leave)

	// Organizer console
	protected.Get("/events/:id/attendees", rsvpHandler.GetAttendees)
	protected.Get("/events/:id/manage", rsvpHandler.ManageData)
	protected.Delete("/events/:id/attendees/:attendance_id", rsvpHandler.RemoveAttendee)
	protected.Put("/events/:id/attendees/:attendance_id/status", rsvpHandler.UpdateAttendeeStatus)
	protected.Get("/events/:id/attendees/:user_id/details", rsvpHandler.AttendeeDetails)
	protected.Post("/events/:id/message", rsvpHandler.MessageAttendees)
	protected.Get("/events/:id/export", rsvpHandler.ExportAttendees)

	// Announcements
	protected.Post("/events/:id/broadcast", notificationHandler.Broadcast)
	protected.Get("/events/:id/broadcast/recipients", notificationHandler.BroadcastRecipients)

	protected.Get("/notifications", notificationHandler.List)
	protected.Put("/notifications/:id/read", notificationHandler.MarkRead)
}
