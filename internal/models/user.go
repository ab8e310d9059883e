package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account holder. Password stores a bcrypt hash and is never
// serialized.
type User struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Username      string         `json:"username" gorm:"uniqueIndex;not null"`
	Email         string         `json:"email" gorm:"uniqueIndex;not null"`
	Password      string         `json:"-" gorm:"not null"`
	Bio           string         `json:"bio"`
	Avatar        string         `json:"avatar"`
	EmailVerified bool           `json:"email_verified" gorm:"default:false"`
	IsAdmin       bool           `json:"is_admin" gorm:"default:false"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	Posts []Post `json:"posts,omitempty" gorm:"foreignKey:UserID"`
}
