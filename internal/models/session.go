package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session. Only the SHA-256 hash of the raw
// token is stored; the row is deleted on logout, expiry, or rotation.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

func (Session) TableName() string {
	return "user_sessions"
}
