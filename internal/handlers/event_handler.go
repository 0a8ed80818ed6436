package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/neighbourhood-connect/backend/internal/dto"
	"github.com/neighbourhood-connect/backend/internal/middleware"
	"github.com/neighbourhood-connect/backend/internal/services"
)

type EventHandler struct {
	events        *services.EventService
	notifications *services.NotificationService
}

func NewEventHandler(events *services.EventService, notifications *services.NotificationService) *EventHandler {
	return &EventHandler{events: events, notifications: notifications}
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	event, err := h.events.Create(user.ID, &req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(),
			})
		}
		return serverError(c, "Failed to create event")
	}

	// Announce the new event. Broadcast failures do not fail creation.
	if _, err := h.notifications.BroadcastEvent(event.ID); err != nil {
		slog.Error("event broadcast failed", "event_id", event.ID, "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

func (h *EventHandler) ListUpcoming(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}

	events, err := h.events.ListUpcoming(user.ID)
	if err != nil {
		return serverError(c, "Failed to load events")
	}
	return c.JSON(fiber.Map{"success": true, "events": events})
}

func (h *EventHandler) Join(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}

	if err := h.events.Join(eventID, user.ID); err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Event not found",
			})
		case errors.Is(err, services.ErrEventFull):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "This event has reached its maximum capacity",
			})
		}
		return serverError(c, "Failed to join event")
	}

	return c.JSON(dto.MessageResponse{Success: true, Message: "Successfully joined the event!"})
}

func (h *EventHandler) Leave(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}

	if err := h.events.Leave(eventID, user.ID); err != nil {
		return serverError(c, "Failed to leave event")
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Successfully left the event!"})
}

func (h *EventHandler) DashboardStats(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}

	stats, err := h.events.DashboardStats(user.ID)
	if err != nil {
		return serverError(c, "Failed to load dashboard stats")
	}
	return c.JSON(stats)
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "User not authenticated",
	})
}

func serverError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func invalidEventID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid event ID",
	})
}
