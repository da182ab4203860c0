package models

import (
	"time"
)

// StorageMeta is a user's configured storage quota in bytes. Created once at
// profile-creation time; capacity changes are an operator concern and never
// happen through the API.
type StorageMeta struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:100;uniqueIndex;not null" json:"user_id"`
	Capacity  int64     `gorm:"not null" json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StorageMeta) TableName() string { return "storage_metas" }
