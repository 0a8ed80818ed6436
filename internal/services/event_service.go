package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neighbourhood-connect/backend/internal/dto"
	"github.com/neighbourhood-connect/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrEventFull        = errors.New("event has reached maximum capacity")
	ErrNotOrganizer     = errors.New("only the organizer can manage this event")
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrInvalidStatus    = errors.New("invalid attendance status")
)

// EventService owns event capacity checks, attendee join/leave, and the
// denormalized attendee counter.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

func (s *EventService) Create(organizerID uuid.UUID, req *dto.CreateEventRequest) (*models.Event, error) {
	var problems []string
	if req.Title == "" {
		problems = append(problems, "Title is required")
	}
	if req.EventDate.IsZero() {
		problems = append(problems, "Event date is required")
	}
	if req.MaxAttendees != nil && *req.MaxAttendees < 1 {
		problems = append(problems, "Maximum attendees must be at least 1")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	event := models.Event{
		ID:           uuid.New(),
		UserID:       organizerID,
		Title:        req.Title,
		Description:  req.Description,
		EventDate:    req.EventDate,
		EndDate:      req.EndDate,
		Location:     req.Location,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		MaxAttendees: req.MaxAttendees,
		ImageURL:     req.ImageURL,
		Status:       models.EventStatusActive,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

// Join adds the user to the event. A repeated join is a silent no-op. The
// capacity check and the counter increment are one conditional UPDATE so two
// concurrent joins cannot overshoot max_attendees, and the whole operation
// runs in a transaction so the counter and the attendance row move together.
func (s *EventService) Join(eventID, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to load event: %w", err)
		}

		var existing models.Attendance
		err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check attendance: %w", err)
		}

		res := tx.Model(&models.Event{}).
			Where("id = ? AND (max_attendees IS NULL OR current_attendees < max_attendees)", eventID).
			UpdateColumn("current_attendees", gorm.Expr("current_attendees + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to increment attendee count: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrEventFull
		}

		attendance := models.Attendance{
			ID:      uuid.New(),
			EventID: eventID,
			UserID:  userID,
			Status:  models.AttendanceStatusAttending,
		}
		if err := tx.Create(&attendance).Error; err != nil {
			return fmt.Errorf("failed to create attendance: %w", err)
		}
		return nil
	})
}

// Leave removes the user's attendance if present. The counter is decremented
// only when a row was actually deleted, and never below zero.
func (s *EventService) Leave(eventID, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&models.Attendance{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete attendance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return s.decrementCounter(tx, eventID)
	})
}

func (s *EventService) decrementCounter(tx *gorm.DB, eventID uuid.UUID) error {
	err := tx.Model(&models.Event{}).
		Where("id = ? AND current_attendees > 0", eventID).
		UpdateColumn("current_attendees", gorm.Expr("current_attendees - ?", 1)).Error
	if err != nil {
		return fmt.Errorf("failed to decrement attendee count: %w", err)
	}
	return nil
}

type upcomingRow struct {
	models.Event
	OrganizerName string
	IsAttending   bool
	AttendeeCount int64
}

// ListUpcoming returns active future events annotated with whether the user
// attends and the live attendee aggregate. The display count is computed from
// the attendance rows, not from the denormalized counter.
func (s *EventService) ListUpcoming(userID uuid.UUID) ([]dto.EventResponse, error) {
	var rows []upcomingRow
	err := s.db.Model(&models.Event{}).
		Select(`events.*, users.full_name AS organizer_name,
			EXISTS(SELECT 1 FROM event_attendees ea WHERE ea.event_id = events.id AND ea.user_id = ?) AS is_attending,
			(SELECT COUNT(*) FROM event_attendees ea2 WHERE ea2.event_id = events.id) AS attendee_count`, userID).
		Joins("JOIN users ON users.id = events.user_id").
		Where("events.status = ? AND events.event_date >= ?", models.EventStatusActive, time.Now()).
		Order("events.event_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	out := make([]dto.EventResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.EventResponse{
			ID:            r.Event.ID,
			Title:         r.Event.Title,
			Description:   r.Event.Description,
			EventDate:     r.Event.EventDate,
			EndDate:       r.Event.EndDate,
			Location:      r.Event.Location,
			Address:       r.Event.Address,
			Latitude:      r.Event.Latitude,
			Longitude:     r.Event.Longitude,
			MaxAttendees:  r.Event.MaxAttendees,
			ImageURL:      r.Event.ImageURL,
			Status:        r.Event.Status,
			OrganizerName: r.OrganizerName,
			IsAttending:   r.IsAttending,
			AttendeeCount: r.AttendeeCount,
		})
	}
	return out, nil
}

// RequireOrganizer loads the event and fails unless requester owns it.
func (s *EventService) RequireOrganizer(eventID, requesterID uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.Preload("Organizer").First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event.UserID != requesterID {
		return nil, ErrNotOrganizer
	}
	return &event, nil
}

func (s *EventService) listAttendees(eventID uuid.UUID) ([]dto.AttendeeResponse, error) {
	type attendeeRow struct {
		AttendanceID uuid.UUID
		UserID       uuid.UUID
		Status       string
		JoinedAt     time.Time
		Name         string
		Email        string
		Phone        string
		Username     string
	}
	var rows []attendeeRow
	err := s.db.Model(&models.Attendance{}).
		Select(`event_attendees.id AS attendance_id, event_attendees.user_id, event_attendees.status,
			event_attendees.joined_at, users.full_name AS name, users.email, users.phone, users.username`).
		Joins("JOIN users ON users.id = event_attendees.user_id").
		Where("event_attendees.event_id = ?", eventID).
		Order("event_attendees.joined_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}

	out := make([]dto.AttendeeResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.AttendeeResponse{
			AttendanceID: r.AttendanceID,
			UserID:       r.UserID,
			Name:         r.Name,
			Email:        r.Email,
			Phone:        r.Phone,
			Username:     r.Username,
			Status:       r.Status,
			JoinedAt:     r.JoinedAt,
		})
	}
	return out, nil
}

// Attendees returns the attendee list for the organizer.
func (s *EventService) Attendees(eventID, requesterID uuid.UUID) ([]dto.AttendeeResponse, error) {
	if _, err := s.RequireOrganizer(eventID, requesterID); err != nil {
		return nil, err
	}
	return s.listAttendees(eventID)
}

// ManageData returns the organizer console payload: event summary, attendee
// list, and signup statistics.
func (s *EventService) ManageData(eventID, organizerID uuid.UUID) (*dto.ManageRSVPResponse, error) {
	event, err := s.RequireOrganizer(eventID, organizerID)
	if err != nil {
		return nil, err
	}

	attendees, err := s.listAttendees(eventID)
	if err != nil {
		return nil, err
	}

	var recent int64
	err = s.db.Model(&models.Attendance{}).
		Where("event_id = ? AND joined_at >= ?", eventID, time.Now().AddDate(0, 0, -7)).
		Count(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recent signups: %w", err)
	}

	total := int64(len(attendees))
	stats := dto.AttendeeStatistics{
		TotalAttendees: total,
		RecentSignups:  recent,
	}
	if event.MaxAttendees != nil && *event.MaxAttendees > 0 {
		stats.CapacityPercentage = roundPercent(float64(total) / float64(*event.MaxAttendees) * 100)
		remaining := *event.MaxAttendees - int(total)
		if remaining < 0 {
			remaining = 0
		}
		stats.SpotsRemaining = &remaining
	}

	return &dto.ManageRSVPResponse{
		Success: true,
		Event: &dto.EventSummary{
			ID:               event.ID,
			Title:            event.Title,
			Description:      event.Description,
			EventDate:        event.EventDate,
			Location:         event.Location,
			Address:          event.Address,
			MaxAttendees:     event.MaxAttendees,
			CurrentAttendees: total,
			Status:           event.Status,
			OrganizerName:    event.Organizer.FullName,
			CreatedAt:        event.CreatedAt,
		},
		Attendees:  attendees,
		Statistics: &stats,
	}, nil
}

// RemoveAttendee deletes an attendance row on behalf of the organizer. The
// decrement is guarded on the delete actually removing a row.
func (s *EventService) RemoveAttendee(eventID, organizerID, attendanceID uuid.UUID) error {
	if _, err := s.RequireOrganizer(eventID, organizerID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND event_id = ?", attendanceID, eventID).Delete(&models.Attendance{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove attendee: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAttendeeNotFound
		}
		return s.decrementCounter(tx, eventID)
	})
}

func (s *EventService) UpdateAttendeeStatus(eventID, organizerID, attendanceID uuid.UUID, status string) error {
	switch status {
	case models.AttendanceStatusAttending, models.AttendanceStatusMaybe, models.AttendanceStatusNotAttending:
	default:
		return ErrInvalidStatus
	}
	if _, err := s.RequireOrganizer(eventID, organizerID); err != nil {
		return err
	}

	res := s.db.Model(&models.Attendance{}).
		Where("id = ? AND event_id = ?", attendanceID, eventID).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update attendee status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAttendeeNotFound
	}
	return nil
}

// AttendeeDetails returns one attendee's profile plus their recent RSVPs to
// other events.
func (s *EventService) AttendeeDetails(eventID, organizerID, attendeeUserID uuid.UUID) (*dto.AttendeeDetailResponse, error) {
	if _, err := s.RequireOrganizer(eventID, organizerID); err != nil {
		return nil, err
	}

	var attendance models.Attendance
	err := s.db.Preload("User").
		Where("event_id = ? AND user_id = ?", eventID, attendeeUserID).
		First(&attendance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAttendeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attendee: %w", err)
	}

	type briefRow struct {
		Title     string
		EventDate time.Time
		Status    string
	}
	var briefs []briefRow
	err = s.db.Model(&models.Attendance{}).
		Select("events.title, events.event_date, event_attendees.status").
		Joins("JOIN events ON events.id = event_attendees.event_id").
		Where("event_attendees.user_id = ? AND event_attendees.event_id != ?", attendeeUserID, eventID).
		Order("events.event_date DESC").
		Limit(5).
		Scan(&briefs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance history: %w", err)
	}

	other := make([]dto.AttendedEventBrief, 0, len(briefs))
	for _, b := range briefs {
		other = append(other, dto.AttendedEventBrief(b))
	}

	return &dto.AttendeeDetailResponse{
		AttendanceID: attendance.ID,
		FullName:     attendance.User.FullName,
		Email:        attendance.User.Email,
		Phone:        attendance.User.Phone,
		Username:     attendance.User.Username,
		Address:      attendance.User.Address,
		Status:       attendance.Status,
		JoinedAt:     attendance.JoinedAt,
		UserSince:    attendance.User.CreatedAt,
		OtherEvents:  other,
	}, nil
}

// ExportAttendees returns the attendee rows for the organizer's export.
func (s *EventService) ExportAttendees(eventID, organizerID uuid.UUID) ([]dto.ExportAttendeeRow, error) {
	if _, err := s.RequireOrganizer(eventID, organizerID); err != nil {
		return nil, err
	}
	attendees, err := s.listAttendees(eventID)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.ExportAttendeeRow, 0, len(attendees))
	for _, a := range attendees {
		phone := a.Phone
		if phone == "" {
			phone = "N/A"
		}
		rows = append(rows, dto.ExportAttendeeRow{
			Name:     a.Name,
			Email:    a.Email,
			Phone:    phone,
			Username: a.Username,
			Status:   a.Status,
			RSVPDate: a.JoinedAt,
		})
	}
	return rows, nil
}

// DashboardStats returns the user's dashboard counters.
func (s *EventService) DashboardStats(userID uuid.UUID) (*dto.DashboardStatsResponse, error) {
	var stats dto.DashboardStatsResponse

	err := s.db.Model(&models.Event{}).
		Where("user_id = ? AND status = ?", userID, models.EventStatusActive).
		Count(&stats.EventsCreated).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count created events: %w", err)
	}

	err = s.db.Model(&models.Attendance{}).
		Where("user_id = ?", userID).
		Count(&stats.EventsAttended).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count attended events: %w", err)
	}

	err = s.db.Model(&models.Event{}).
		Distinct("user_id").
		Where("user_id != ? AND status = ?", userID, models.EventStatusActive).
		Count(&stats.NeighboursConnected).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count neighbours: %w", err)
	}

	return &stats, nil
}

func roundPercent(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
