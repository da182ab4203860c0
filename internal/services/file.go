package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/internal/storage"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

// FileService exposes the logical file operations on top of the configured
// store variant: describe, stream, rename, describe-text and delete. The
// metadata row and the physical bytes are kept in lockstep; the bytes never
// outlive the row.
type FileService struct {
	db    *gorm.DB
	store storage.Store
	authz *AuthorizationService
}

func NewFileService(db *gorm.DB, store storage.Store) *FileService {
	return &FileService{db: db, store: store, authz: NewAuthorizationService(db)}
}

// authorizeWrite checks that the user may mutate the file, resolving the
// owning entity: project attachments need Developer on the project, project
// images need Admin, profile images belong to the profile's user only, and a
// file nothing references yet can only be touched by its uploader.
func (s *FileService) authorizeWrite(userID string, meta *models.FileMeta) error {
	if meta.AttachmentProjectID != nil {
		_, err := s.authz.Authorize(userID, *meta.AttachmentProjectID, models.RoleDeveloper)
		return err
	}

	var project models.Project
	err := s.db.Where("image_id = ?", meta.ID).First(&project).Error
	if err == nil {
		_, err = s.authz.Authorize(userID, project.ID, models.RoleAdmin)
		return err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var profile models.Profile
	err = s.db.Where("image_id = ?", meta.ID).First(&profile).Error
	if err == nil {
		if profile.UserID != userID {
			return response.NewNotAuthorized("permission denied")
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if meta.UploadedBy != userID {
		return response.NewNotAuthorized("permission denied")
	}
	return nil
}

func (s *FileService) Get(fileID uint) (*models.FileMeta, error) {
	var meta models.FileMeta
	if err := s.db.First(&meta, fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("file not found")
		}
		return nil, err
	}
	return &meta, nil
}

// OpenStream returns the file's metadata and a streaming reader over its
// bytes. The caller pipes the stream to its sink and must close it; closing
// releases the underlying read handle when the client disconnects mid-pipe.
func (s *FileService) OpenStream(ctx context.Context, fileID uint) (*models.FileMeta, io.ReadCloser, error) {
	meta, err := s.Get(fileID)
	if err != nil {
		return nil, nil, err
	}
	if !meta.Available {
		return nil, nil, response.NewNotFound("file not found")
	}

	rc, err := s.store.Open(ctx, storage.Category(meta.Category), meta.Key())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, response.NewNotFound("file not found")
		}
		return nil, nil, err
	}

	return meta, rc, nil
}

// Rename gives the file a new base name while preserving the extension: the
// suffix after the last '.' of the current stored filename is appended to
// the new base name. A current name with no '.' gets no extension.
func (s *FileService) Rename(ctx context.Context, userID string, fileID uint, newBaseName string) (*models.FileMeta, error) {
	meta, err := s.Get(fileID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(userID, meta); err != nil {
		return nil, err
	}

	extension := ""
	if idx := strings.LastIndex(meta.Filename, "."); idx != -1 {
		extension = meta.Filename[idx:]
	}
	newName := newBaseName + extension

	oldKey := meta.Key()
	newKey := meta.Prefix + "/" + newName

	if err := s.store.Rename(ctx, storage.Category(meta.Category), oldKey, newKey); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, response.NewNotFound("file not found")
		}
		return nil, err
	}

	if err := s.db.Model(meta).Update("filename", newName).Error; err != nil {
		return nil, err
	}

	meta.Filename = newName
	return meta, nil
}

// SetDescription sets or clears the file's description. An empty text clears
// the column entirely: absent is the canonical "no description", never an
// empty string.
func (s *FileService) SetDescription(userID string, fileID uint, text string) (*models.FileMeta, error) {
	meta, err := s.Get(fileID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(userID, meta); err != nil {
		return nil, err
	}

	if text == "" {
		if err := s.db.Model(meta).Update("description", gorm.Expr("NULL")).Error; err != nil {
			return nil, err
		}
		meta.Description = nil
	} else {
		if err := s.db.Model(meta).Update("description", text).Error; err != nil {
			return nil, err
		}
		meta.Description = &text
	}

	return meta, nil
}

// Delete removes the bytes and then the metadata row. Bytes already gone are
// not an error: the store's delete is idempotent, so retried cleanups and
// crash reconciliation pass through cleanly.
func (s *FileService) Delete(ctx context.Context, fileID uint) error {
	meta, err := s.Get(fileID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, storage.Category(meta.Category), meta.Key()); err != nil {
		return err
	}

	return s.db.Delete(meta).Error
}
