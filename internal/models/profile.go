package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the user-facing record for an identity-provider account.
// UserID is the provider's subject claim; one profile per user.
type Profile struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            string         `gorm:"size:100;uniqueIndex;not null" json:"user_id"`
	FirstName         string         `gorm:"size:100;not null" json:"first_name"`
	LastName          string         `gorm:"size:100;not null" json:"last_name"`
	Title             string         `gorm:"size:200" json:"title"`
	Description       string         `gorm:"type:text" json:"description"`
	OriginalImageLink string         `gorm:"size:500" json:"original_image_link"`
	ImageID           *uint          `json:"image_id"`
	Image             *FileMeta      `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string { return "profiles" }
