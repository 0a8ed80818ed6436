package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Event is a neighbourhood event owned by one organizer.
//
// CurrentAttendees is a denormalized counter maintained by the join/leave
// paths; display queries compute the live aggregate instead of trusting it.
type Event struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description,omitempty"`
	EventDate        time.Time  `gorm:"not null;index" json:"event_date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	Location         string     `gorm:"size:200" json:"location,omitempty"`
	Address          string     `gorm:"type:text" json:"address,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	MaxAttendees     *int       `json:"max_attendees,omitempty"`
	CurrentAttendees int        `gorm:"default:0" json:"current_attendees"`
	ImageURL         string     `gorm:"size:500" json:"image_url,omitempty"`
	Status           string     `gorm:"size:20;default:'active';index" json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Organizer        User       `gorm:"foreignKey:UserID" json:"-"`
}
