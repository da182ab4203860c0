package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is a project membership level. Roles compare by their ordinal value,
// so a higher role always satisfies a lower requirement. The numeric gaps
// leave room for intermediate levels without a data migration.
type Role int

const (
	RoleContributor Role = 1000
	RoleDeveloper   Role = 2000
	RoleAdmin       Role = 3000
	RoleCreator     Role = 4000
)

func (r Role) Valid() bool {
	switch r {
	case RoleContributor, RoleDeveloper, RoleAdmin, RoleCreator:
		return true
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleContributor:
		return "contributor"
	case RoleDeveloper:
		return "developer"
	case RoleAdmin:
		return "admin"
	case RoleCreator:
		return "creator"
	}
	return "unknown"
}

// Member represents a profile's membership and role within a project.
// A profile may join a given project at most once.
type Member struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"size:100;not null;index" json:"user_id"`
	ProfileID uint           `gorm:"uniqueIndex:idx_project_profile;not null" json:"profile_id"`
	Profile   *Profile       `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	ProjectID uint           `gorm:"uniqueIndex:idx_project_profile;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Role      Role           `gorm:"not null" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string { return "members" }
