package services

import (
	"context"
	"errors"

	"github.com/projectpulse/backend/internal/config"
	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/internal/storage"
	"github.com/projectpulse/backend/pkg/logger"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

type ProfileService struct {
	db       *gorm.DB
	files    *FileService
	cfg      *config.StorageConfig
	identity *IdentityService
}

// NewProfileService builds the profile service. identity may be nil; profile
// changes are then kept local and never pushed to the provider.
func NewProfileService(db *gorm.DB, store storage.Store, cfg *config.StorageConfig, identity *IdentityService) *ProfileService {
	return &ProfileService{
		db:       db,
		files:    NewFileService(db, store),
		cfg:      cfg,
		identity: identity,
	}
}

// syncIdentity pushes the profile's display name to the identity provider's
// user metadata. Best effort: the local row is already committed and the
// provider copy is informational only.
func (s *ProfileService) syncIdentity(ctx context.Context, profile *models.Profile) {
	if s.identity == nil {
		return
	}
	err := s.identity.UpdateUserMetadata(ctx, profile.UserID, map[string]interface{}{
		"user_metadata": map[string]string{
			"first_name": profile.FirstName,
			"last_name":  profile.LastName,
		},
	})
	if err != nil {
		logger.Warnf("[Profile] failed to sync profile %d to the identity provider: %v", profile.ID, err)
	}
}

type CreateProfileRequest struct {
	FirstName         string `json:"first_name" binding:"required"`
	LastName          string `json:"last_name" binding:"required"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	OriginalImageLink string `json:"original_image_link"`
}

type UpdateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create creates the caller's profile (one per user) and seeds their
// storage quota record with the configured default capacity.
func (s *ProfileService) Create(ctx context.Context, userID string, req *CreateProfileRequest) (*models.Profile, error) {
	var existing int64
	if err := s.db.Model(&models.Profile{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, response.NewBadRequest("user already has a profile")
	}

	profile := models.Profile{
		UserID:            userID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Title:             req.Title,
		Description:       req.Description,
		OriginalImageLink: req.OriginalImageLink,
	}

	if err := s.db.Create(&profile).Error; err != nil {
		return nil, err
	}

	var quotaRows int64
	if err := s.db.Model(&models.StorageMeta{}).Where("user_id = ?", userID).Count(&quotaRows).Error; err != nil {
		return nil, err
	}
	if quotaRows == 0 {
		meta := models.StorageMeta{UserID: userID, Capacity: s.cfg.DefaultCapacity}
		if err := s.db.Create(&meta).Error; err != nil {
			return nil, err
		}
	}

	s.syncIdentity(ctx, &profile)

	return &profile, nil
}

func (s *ProfileService) Get(profileID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Preload("Image").First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("profile does not exist")
		}
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) GetByUser(userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Preload("Image").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("profile does not exist")
		}
		return nil, err
	}
	return &profile, nil
}

// ownProfile loads a profile only when it belongs to the acting user. The
// not-found message conflates existence and ownership on purpose.
func (s *ProfileService) ownProfile(userID string, profileID uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Where("id = ? AND user_id = ?", profileID, userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("profile does not exist or does not belong to the user")
		}
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, profileID uint, req *UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.ownProfile(userID, profileID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if req.FirstName != "" || req.LastName != "" {
		if err := s.db.First(profile, profileID).Error; err == nil {
			s.syncIdentity(ctx, profile)
		}
	}

	return profile, nil
}

// Delete removes the caller's profile and its image. The storage quota
// record stays: usage history belongs to the user, not the profile.
func (s *ProfileService) Delete(ctx context.Context, userID string, profileID uint) error {
	profile, err := s.ownProfile(userID, profileID)
	if err != nil {
		return err
	}

	if profile.ImageID != nil {
		if err := s.files.Delete(ctx, *profile.ImageID); err != nil {
			return err
		}
	}

	return s.db.Delete(profile).Error
}

// DeleteImage removes the profile image and clears the reference.
func (s *ProfileService) DeleteImage(ctx context.Context, userID string, profileID uint) error {
	profile, err := s.ownProfile(userID, profileID)
	if err != nil {
		return err
	}

	if profile.ImageID == nil {
		return response.NewNotFound("file not found")
	}

	if err := s.files.Delete(ctx, *profile.ImageID); err != nil {
		return err
	}

	return s.db.Model(profile).Update("image_id", gorm.Expr("NULL")).Error
}
