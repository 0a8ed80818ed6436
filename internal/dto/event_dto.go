package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	EventDate    time.Time  `json:"event_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Location     string     `json:"location,omitempty"`
	Address      string     `json:"address,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	MaxAttendees *int       `json:"max_attendees,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
}

// EventResponse is a browse-page event: annotated with whether the requesting
// user attends and with the live attendee aggregate, not the cached counter.
type EventResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	EventDate     time.Time  `json:"event_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Location      string     `json:"location,omitempty"`
	Address       string     `json:"address,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	MaxAttendees  *int       `json:"max_attendees,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Status        string     `json:"status"`
	OrganizerName string     `json:"organizer_name"`
	IsAttending   bool       `json:"is_attending"`
	AttendeeCount int64      `json:"attendee_count"`
}

type AttendeeResponse struct {
	AttendanceID uuid.UUID `json:"attendance_id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Username     string    `json:"username"`
	Status       string    `json:"status"`
	JoinedAt     time.Time `json:"joined_at"`
}

type AttendeeStatistics struct {
	TotalAttendees     int64   `json:"total_attendees"`
	RecentSignups      int64   `json:"recent_signups"`
	CapacityPercentage float64 `json:"capacity_percentage"`
	// SpotsRemaining is nil for events without a capacity limit.
	SpotsRemaining *int `json:"spots_remaining"`
}

type ManageRSVPResponse struct {
	Success    bool               `json:"success"`
	Event      *EventSummary      `json:"event,omitempty"`
	Attendees  []AttendeeResponse `json:"attendees,omitempty"`
	Statistics *AttendeeStatistics `json:"statistics,omitempty"`
}

type EventSummary struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	EventDate        time.Time `json:"event_date"`
	Location         string    `json:"location,omitempty"`
	Address          string    `json:"address,omitempty"`
	MaxAttendees     *int      `json:"max_attendees,omitempty"`
	CurrentAttendees int64     `json:"current_attendees"`
	Status           string    `json:"status"`
	OrganizerName    string    `json:"organizer_name"`
	CreatedAt        time.Time `json:"created_at"`
}

type UpdateAttendeeStatusRequest struct {
	Status string `json:"status"`
}

type MessageAttendeesRequest struct {
	Message string `json:"message"`
}

type AttendeeDetailResponse struct {
	AttendanceID uuid.UUID            `json:"attendance_id"`
	FullName     string               `json:"full_name"`
	Email        string               `json:"email"`
	Phone        string               `json:"phone,omitempty"`
	Username     string               `json:"username"`
	Address      string               `json:"address,omitempty"`
	Status       string               `json:"status"`
	JoinedAt     time.Time            `json:"joined_at"`
	UserSince    time.Time            `json:"user_since"`
	OtherEvents  []AttendedEventBrief `json:"other_events"`
}

type AttendedEventBrief struct {
	Title     string    `json:"title"`
	EventDate time.Time `json:"event_date"`
	Status    string    `json:"status"`
}

type ExportAttendeeRow struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Username string    `json:"username"`
	Status   string    `json:"status"`
	RSVPDate time.Time `json:"rsvp_date"`
}

type DashboardStatsResponse struct {
	EventsCreated       int64 `json:"events_created"`
	EventsAttended      int64 `json:"events_attended"`
	NeighboursConnected int64 `json:"neighbours_connected"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
