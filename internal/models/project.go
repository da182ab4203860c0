package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is the sole authorization root: every member and task belongs to
// exactly one project. CreatedBy never changes after creation.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Objectives  string         `gorm:"type:text" json:"objectives"`
	Status      WorkStatus     `gorm:"size:50;not null" json:"status"`
	CreatedBy   string         `gorm:"size:100;not null;index" json:"created_by"`
	ImageID     *uint          `json:"image_id"`
	Image       *FileMeta      `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	Members     []Member       `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks       []Task         `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
	Attachments []FileMeta     `gorm:"foreignKey:AttachmentProjectID" json:"attachments,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
