package models

import (
	"time"

	"gorm.io/gorm"
)

// FileMeta tracks one stored file. The physical bytes live at
// "{prefix}/{filename}" in the configured file store and must not outlive
// this row. StorageOwner is the user whose quota the bytes count against;
// it may differ from UploadedBy. Size is immutable after creation.
//
// Description is a pointer so that "no description" is stored as NULL:
// clearing a description removes the value rather than writing an empty
// string.
type FileMeta struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Filename            string         `gorm:"size:255;not null" json:"filename"`
	ContentType         string         `gorm:"size:100;not null" json:"content_type"`
	Category            string         `gorm:"size:32;not null" json:"category"`
	Prefix              string         `gorm:"size:36;not null;uniqueIndex" json:"prefix"`
	UploadedBy          string         `gorm:"size:100;not null" json:"uploaded_by"`
	StorageOwner        string         `gorm:"size:100;not null;index" json:"storage_owner"`
	Description         *string        `gorm:"size:1000" json:"description,omitempty"`
	Size                int64          `gorm:"not null" json:"size"`
	Available           bool           `gorm:"not null" json:"available"`
	AttachmentProjectID *uint          `gorm:"index" json:"attachment_project_id,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FileMeta) TableName() string { return "file_metas" }

// Key is the file's storage key within its category.
func (f *FileMeta) Key() string {
	return f.Prefix + "/" + f.Filename
}
