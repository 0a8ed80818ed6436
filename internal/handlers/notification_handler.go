package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/neighbourhood-connect/backend/internal/dto"
	"github.com/neighbourhood-connect/backend/internal/middleware"
	"github.com/neighbourhood-connect/backend/internal/services"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	events        *services.EventService
}

func NewNotificationHandler(notifications *services.NotificationService, events *services.EventService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, events: events}
}

// List returns the caller's most recent notifications.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}

	notifications, err := h.notifications.ListForUser(user.ID)
	if err != nil {
		return serverError(c, "Failed to load notifications")
	}
	return c.JSON(fiber.Map{"success": true, "notifications": notifications})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid notification ID",
		})
	}

	if err := h.notifications.MarkRead(user.ID, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Notification not found",
			})
		}
		return serverError(c, "Failed to update notification")
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Notification marked as read"})
}

// Broadcast announces an event to every verified member. Repeated calls for
// the same event are a no-op.
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}

	if _, err := h.events.RequireOrganizer(eventID, user.ID); err != nil {
		return organizerError(c, err, "Failed to load event")
	}

	result, err := h.notifications.BroadcastEvent(eventID)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Event not found",
			})
		}
		return serverError(c, "Failed to broadcast event")
	}

	if result.AlreadyBroadcast {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Event has already been announced",
		})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Event announced to the community",
		"recipients": result.Recipients,
		"delivered":  result.Delivered,
		"failed":     result.Failed,
	})
}

func (h *NotificationHandler) BroadcastRecipients(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}

	if _, err := h.events.RequireOrganizer(eventID, user.ID); err != nil {
		return organizerError(c, err, "Failed to load event")
	}

	recipients, err := h.notifications.BroadcastRecipients(eventID)
	if err != nil {
		return serverError(c, "Failed to load recipients")
	}
	return c.JSON(fiber.Map{"success": true, "recipients": recipients})
}
