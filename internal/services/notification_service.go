package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	mailer "github.com/neighbourhood-connect/backend/internal/mail"
	"github.com/neighbourhood-connect/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService owns broadcast idempotence and per-user delivery
// bookkeeping.
type NotificationService struct {
	db     *gorm.DB
	mailer mailer.Mailer
}

func NewNotificationService(db *gorm.DB, m mailer.Mailer) *NotificationService {
	return &NotificationService{db: db, mailer: m}
}

// BroadcastResult reports what a broadcast attempt did.
type BroadcastResult struct {
	AlreadyBroadcast bool `json:"already_broadcast"`
	Recipients       int  `json:"recipients"`
	Delivered        int  `json:"delivered"`
	Failed           int  `json:"failed"`
}

// BroadcastEvent notifies every active, verified user about the event unless
// a broadcast for it was already attempted. The notification row is written
// before the mail attempt and is not rolled back on delivery failure, so the
// idempotence guarantee is at-most-one broadcast attempt per event, not
// at-least-once delivery per user.
func (s *NotificationService) BroadcastEvent(eventID uuid.UUID) (*BroadcastResult, error) {
	var event models.Event
	err := s.db.First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	var existing int64
	err = s.db.Model(&models.Notification{}).
		Where("type = ? AND reference_id = ?", models.NotificationTypeEvent, eventID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check broadcast state: %w", err)
	}
	if existing > 0 {
		return &BroadcastResult{AlreadyBroadcast: true}, nil
	}

	var users []models.User
	err = s.db.Where("is_active = ? AND is_verified = ?", true, true).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate recipients: %w", err)
	}

	result := BroadcastResult{Recipients: len(users)}

	for _, user := range users {
		refID := eventID
		notification := models.Notification{
			ID:          uuid.New(),
			UserID:      user.ID,
			Title:       "New Event: " + event.Title,
			Message:     event.Description,
			Type:        models.NotificationTypeEvent,
			ReferenceID: &refID,
		}
		if err := s.db.Create(&notification).Error; err != nil {
			slog.Error("failed to write notification", "user_id", user.ID, "event_id", eventID, "error", err)
			result.Failed++
			continue
		}

		personal := mailer.EventAnnouncement(user.FullName, event.Title, event.EventDate, event.Location)
		sendErr := s.mailer.Send(user.Email, user.FullName, personal.Subject, personal.HTMLBody, personal.TextBody)

		delivery := map[string]interface{}{
			"email_sent":   sendErr == nil,
			"attempted_at": time.Now().UTC(),
		}
		if sendErr != nil {
			slog.Error("broadcast email failed", "email", user.Email, "event_id", eventID, "error", sendErr)
			delivery["error"] = "delivery failed"
			result.Failed++
		} else {
			result.Delivered++
		}
		if b, err := json.Marshal(delivery); err == nil {
			s.db.Model(&notification).Update("delivery", datatypes.JSON(b))
		}
	}

	return &result, nil
}

// MessageAttendees writes a notification for every attendee with status
// 'attending' on behalf of the organizer.
func (s *NotificationService) MessageAttendees(event *models.Event, organizerName, message string) (int, int, error) {
	if message == "" {
		return 0, 0, &ValidationError{Problems: []string{"Message cannot be empty"}}
	}

	var attendees []models.Attendance
	err := s.db.Where("event_id = ? AND status = ?", event.ID, models.AttendanceStatusAttending).
		Find(&attendees).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list attendees: %w", err)
	}

	title := fmt.Sprintf("Message from %s - %s", organizerName, event.Title)
	sent := 0
	for _, a := range attendees {
		refID := event.ID
		notification := models.Notification{
			ID:          uuid.New(),
			UserID:      a.UserID,
			Title:       title,
			Message:     message,
			Type:        models.NotificationTypeMessage,
			ReferenceID: &refID,
		}
		if err := s.db.Create(&notification).Error; err != nil {
			slog.Error("failed to notify attendee", "user_id", a.UserID, "event_id", event.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, len(attendees), nil
}

// ListForUser returns the user's most recent notifications.
func (s *NotificationService) ListForUser(userID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BroadcastRecipients lists who received the event broadcast.
func (s *NotificationService) BroadcastRecipients(eventID uuid.UUID) ([]BroadcastRecipient, error) {
	var rows []BroadcastRecipient
	err := s.db.Model(&models.Notification{}).
		Select("users.full_name, users.email, notifications.created_at AS sent_at").
		Joins("JOIN users ON users.id = notifications.user_id").
		Where("notifications.type = ? AND notifications.reference_id = ?", models.NotificationTypeEvent, eventID).
		Order("notifications.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return rows, nil
}

type BroadcastRecipient struct {
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	SentAt   time.Time `json:"sent_at"`
}
