package services

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/projectpulse/backend/internal/config"
	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/internal/storage"
	"github.com/projectpulse/backend/pkg/logger"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

// AttachKind says which entity field the uploaded file ends up on.
type AttachKind int

const (
	AttachProjectImage AttachKind = iota
	AttachProjectAttachment
	AttachProfileImage
)

// IncomingFile is a request-scoped file payload. Reader is consumed exactly
// once, by the store write.
type IncomingFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadInput carries everything Process needs. StorageOwner overrides the
// default billing target (project creator for project uploads, acting user
// for profile images).
type UploadInput struct {
	ActingUserID string
	ProjectID    uint
	ProfileID    uint
	RequiredRole models.Role
	Kind         AttachKind
	File         *IncomingFile
	StorageOwner string
}

var imageContentTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/svg+xml": true,
}

var attachmentContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/json":   true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/vnd.ms-excel":                                                  true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"image/png":  true,
	"image/jpeg": true,
	"text/plain": true,
}

// UploadService orchestrates one upload request as a single logical unit:
// validate, authorize, admit under quota, write bytes, persist metadata and
// commit the owning entity's file reference. Steps before the final commit
// have no visible effect on failure.
type UploadService struct {
	db    *gorm.DB
	store storage.Store
	authz *AuthorizationService
	quota *QuotaService
	files *FileService
	queue *TaskQueue
	cfg   *config.StorageConfig
}

func NewUploadService(db *gorm.DB, store storage.Store, cfg *config.StorageConfig, queue *TaskQueue) *UploadService {
	return &UploadService{
		db:    db,
		store: store,
		authz: NewAuthorizationService(db),
		quota: NewQuotaService(db, cfg),
		files: NewFileService(db, store),
		queue: queue,
		cfg:   cfg,
	}
}

func (s *UploadService) category(kind AttachKind) storage.Category {
	if kind == AttachProjectAttachment {
		return storage.CategoryAttachments
	}
	return storage.CategoryImages
}

func (s *UploadService) validate(in *UploadInput) error {
	if in.File == nil || in.File.Reader == nil {
		return response.NewBadRequest("file is not sent")
	}

	if s.category(in.Kind) == storage.CategoryImages {
		if !imageContentTypes[in.File.ContentType] {
			return response.NewBadRequest("acceptable files: *.png, *.jpeg, *.jpg, *.gif, *.svg")
		}
		if in.File.Size > s.cfg.MaxImageSize {
			return response.NewBadRequest("file is too large")
		}
		return nil
	}

	if !attachmentContentTypes[in.File.ContentType] {
		return response.NewBadRequest(
			"acceptable files: *.pdf, *.doc, *.docx, *.ppt, *.pptx, *.xls, *.xlsx, *.png, *.jpeg, *.jpg, *.txt, *.json")
	}
	if in.File.Size > s.cfg.MaxAttachmentSize {
		return response.NewBadRequest("file is too large")
	}
	return nil
}

// Process runs the upload pipeline. Validation happens before any
// persistence; the quota check happens strictly after authorization so an
// unauthorized caller never learns quota state; the old file of a replaced
// singular reference is removed only after the new reference is committed.
func (s *UploadService) Process(ctx context.Context, in *UploadInput) (*models.FileMeta, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	var (
		project *models.Project
		profile *models.Profile
		owner   string
		err     error
	)

	switch in.Kind {
	case AttachProfileImage:
		profile = &models.Profile{}
		err = s.db.Where("id = ? AND user_id = ?", in.ProfileID, in.ActingUserID).First(profile).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Existence and ownership are deliberately conflated so the
				// response never reveals another user's profile.
				return nil, response.NewNotFound("profile does not exist or does not belong to the user")
			}
			return nil, err
		}
		owner = in.ActingUserID
	default:
		project, err = s.authz.Authorize(in.ActingUserID, in.ProjectID, in.RequiredRole)
		if err != nil {
			return nil, err
		}
		owner = project.CreatedBy
	}

	if in.StorageOwner != "" {
		owner = in.StorageOwner
	}

	if err := s.quota.Admit(owner, in.File.Size); err != nil {
		return nil, err
	}

	category := s.category(in.Kind)
	prefix := uuid.NewString()
	key := prefix + "/" + in.File.Name

	if err := s.store.Save(ctx, category, key, in.File.Reader, in.File.Size); err != nil {
		// No metadata row exists yet; a failed byte write commits nothing.
		return nil, err
	}

	meta := models.FileMeta{
		Filename:     in.File.Name,
		ContentType:  in.File.ContentType,
		Category:     string(category),
		Prefix:       prefix,
		UploadedBy:   in.ActingUserID,
		StorageOwner: owner,
		Size:         in.File.Size,
		Available:    true,
	}
	if in.Kind == AttachProjectAttachment {
		meta.AttachmentProjectID = &project.ID
	}

	if err := s.db.Create(&meta).Error; err != nil {
		return nil, err
	}

	switch in.Kind {
	case AttachProjectImage:
		oldImageID := project.ImageID
		if err := s.db.Model(project).Update("image_id", meta.ID).Error; err != nil {
			return nil, err
		}
		if oldImageID != nil {
			s.removeReplacedFile(ctx, *oldImageID)
		}
	case AttachProfileImage:
		oldImageID := profile.ImageID
		if err := s.db.Model(profile).Update("image_id", meta.ID).Error; err != nil {
			return nil, err
		}
		if oldImageID != nil {
			s.removeReplacedFile(ctx, *oldImageID)
		}
	}

	return &meta, nil
}

// removeReplacedFile disposes of a file whose reference has already been
// replaced. The new reference is durably committed at this point, so a
// failure here leaves an orphan for the cleanup sweep, never a dangling
// entity reference.
func (s *UploadService) removeReplacedFile(ctx context.Context, fileID uint) {
	if s.queue != nil {
		err := s.db.Model(&models.FileMeta{}).
			Where("id = ?", fileID).
			Update("available", false).Error
		if err == nil {
			if err := s.queue.EnqueueFileDelete(fileID); err == nil {
				return
			}
		}
		logger.Warnf("[Upload] deferred delete of file %d failed, deleting inline", fileID)
	}

	if err := s.files.Delete(ctx, fileID); err != nil {
		logger.Errorf("[Upload] failed to remove replaced file %d: %v", fileID, err)
	}
}
