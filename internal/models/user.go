package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered neighbour. Accounts start unverified; the OTP columns
// are both set while a code is outstanding and both NULL otherwise.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username        string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email           string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password        string     `gorm:"size:255;not null" json:"-"`
	FullName        string     `gorm:"size:100;not null" json:"full_name"`
	Address         string     `gorm:"type:text" json:"address,omitempty"`
	Phone           string     `gorm:"size:20" json:"phone,omitempty"`
	OTPCode         *string    `gorm:"size:6;index" json:"-"`
	OTPExpiry       *time.Time `json:"-"`
	IsVerified      bool       `gorm:"default:false;index" json:"is_verified"`
	IsActive        bool       `gorm:"default:true" json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
