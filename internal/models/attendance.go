package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AttendanceStatusAttending    = "attending"
	AttendanceStatusMaybe        = "maybe"
	AttendanceStatusNotAttending = "not_attending"
)

// Attendance is the RSVP record between a user and an event. The composite
// unique index is what enforces at-most-one row per (event, user) pair.
type Attendance struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_attendees_event_user" json:"event_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_attendees_event_user" json:"user_id"`
	Status   string    `gorm:"size:20;default:'attending'" json:"status"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
	Event    Event     `gorm:"foreignKey:EventID" json:"-"`
	User     User      `gorm:"foreignKey:UserID" json:"-"`
}

func (Attendance) TableName() string {
	return "event_attendees"
}
