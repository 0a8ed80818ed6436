package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/neighbourhood-connect/backend/internal/dto"
	"github.com/neighbourhood-connect/backend/internal/middleware"
	"github.com/neighbourhood-connect/backend/internal/services"
)

// RSVPHandler is the organizer console: attendee management, messaging, and
// export. Every route requires the caller to own the event.
type RSVPHandler struct {
	events        *services.EventService
	notifications *services.NotificationService
}

func NewRSVPHandler(events *services.EventService, notifications *services.NotificationService) *RSVPHandler {
	return &RSVPHandler{events: events, notifications: notifications}
}

func (h *RSVPHandler) GetAttendees(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}

	attendees, err := h.events.Attendees(eventID, user.ID)
	if err != nil {
		return organizerError(c, err, "Failed to load attendees")
	}
	return c.JSON(fiber.Map{"success": true, "attendees": attendees})
}

func (h *RSVPHandler) ManageData(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}

	data, err := h.events.ManageData(eventID, user.ID)
	if err != nil {
		return organizerError(c, err, "Failed to load event data")
	}
	return c.JSON(data)
}

func (h *RSVPHandler) RemoveAttendee(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}
	attendanceID, err := uuid.Parse(c.Params("attendance_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid attendee ID",
		})
	}

	if err := h.events.RemoveAttendee(eventID, user.ID, attendanceID); err != nil {
		return organizerError(c, err, "Failed to remove attendee")
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Attendee removed successfully"})
}

func (h *RSVPHandler) UpdateAttendeeStatus(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}
	attendanceID, err := uuid.Parse(c.Params("attendance_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid attendee ID",
		})
	}

	var req dto.UpdateAttendeeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.events.UpdateAttendeeStatus(eventID, user.ID, attendanceID, req.Status); err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid status",
			})
		}
		return organizerError(c, err, "Failed to update attendee status")
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Attendee status updated successfully"})
}

func (h *RSVPHandler) AttendeeDetails(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}
	attendeeUserID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid attendee user ID",
		})
	}

	detail, err := h.events.AttendeeDetails(eventID, user.ID, attendeeUserID)
	if err != nil {
		return organizerError(c, err, "Failed to load attendee details")
	}
	return c.JSON(fiber.Map{"success": true, "attendee": detail})
}

func (h *RSVPHandler) MessageAttendees(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}

	var req dto.MessageAttendeesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	event, err := h.events.RequireOrganizer(eventID, user.ID)
	if err != nil {
		return organizerError(c, err, "Failed to load event")
	}

	sent, total, err := h.notifications.MessageAttendees(event, user.FullName, req.Message)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(),
			})
		}
		return serverError(c, "Failed to send message")
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"message":         fmt.Sprintf("Message sent to %d attendees", sent),
		"sent_count":      sent,
		"total_attendees": total,
	})
}

func (h *RSVPHandler) ExportAttendees(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return unauthenticated(c)
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidEventID(c)
	}

	rows, err := h.events.ExportAttendees(eventID, user.ID)
	if err != nil {
		return organizerError(c, err, "Failed to export attendees")
	}

	event, err := h.events.RequireOrganizer(eventID, user.ID)
	if err != nil {
		return organizerError(c, err, "Failed to export attendees")
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"data":             rows,
		"event_title":      event.Title,
		"export_timestamp": time.Now().UTC(),
	})
}

func organizerError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrEventNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Event not found",
		})
	case errors.Is(err, services.ErrNotOrganizer):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Only the event organizer can perform this action",
		})
	case errors.Is(err, services.ErrAttendeeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Attendee not found or already removed",
		})
	}
	return serverError(c, fallback)
}
