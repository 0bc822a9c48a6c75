package models

import (
	"time"
)

type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `json:"name"`
	Phone      string `gorm:"uniqueIndex" json:"phone"`
	Email      string `json:"email"`
	Role       string `gorm:"default:user" json:"role"`
	Gender     string `json:"gender,omitempty"`
	InviteCode string `json:"invite_code,omitempty"`

	// OTP state. The code itself is stored bcrypt-hashed.
	OTPHash        string     `json:"-"`
	OTPExpires     *time.Time `json:"-"`
	OTPAttempts    int        `json:"-"`
	OTPLockedUntil *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
