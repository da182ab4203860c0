package models

import (
	"time"

	"gorm.io/gorm"
)

// Task belongs to exactly one project. AssigneeUserID is denormalized from
// the assignee member's user id; the two fields are always set and cleared
// together.
type Task struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ProjectID      uint           `gorm:"not null;index" json:"project_id"`
	Project        *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Title          string         `gorm:"size:200;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Status         WorkStatus     `gorm:"size:50;not null" json:"status"`
	AssigneeID     *uint          `json:"assignee_id"`
	Assignee       *Member        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	AssigneeUserID string         `gorm:"size:100" json:"assignee_user_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }
