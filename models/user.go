package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name         string `gorm:"type:varchar(100);not null"`
	Email        string `gorm:"type:varchar(191);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`

	// RefreshToken and RefreshTokenExpiresAt are always written together in a
	// single UPDATE. At most one refresh token is live per user; issuing a new
	// one invalidates the previous even if its signature is still valid.
	RefreshToken          *string    `gorm:"type:varchar(512)"`
	RefreshTokenExpiresAt *time.Time

	LastLoginAt     *time.Time
	ProfileImageKey string `gorm:"type:varchar(255)"`
}

func (User) TableName() string {
	return "users"
}
