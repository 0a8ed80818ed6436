package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotificationTypeEvent   = "event"
	NotificationTypeMessage = "message"
	NotificationTypeSystem  = "system"
)

// Notification is a per-user delivery record. For event broadcasts the
// presence of any row with (type=event, reference_id=event) marks the
// broadcast as already attempted; it is never re-sent.
type Notification struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Message     string         `gorm:"type:text;not null" json:"message"`
	Type        string         `gorm:"size:20;default:'system';index:idx_notifications_type_ref" json:"type"`
	ReferenceID *uuid.UUID     `gorm:"type:uuid;index:idx_notifications_type_ref" json:"reference_id,omitempty"`
	IsRead      bool           `gorm:"default:false" json:"is_read"`
	Delivery    datatypes.JSON `json:"delivery,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	User        User           `gorm:"foreignKey:UserID" json:"-"`
}
