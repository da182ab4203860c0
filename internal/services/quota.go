package services

import (
	"errors"

	"github.com/projectpulse/backend/internal/config"
	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

// QuotaService accounts a user's storage usage against their configured
// capacity. Quota is global per user: every file whose storage owner is the
// user counts, no matter which project or profile references it.
type QuotaService struct {
	db              *gorm.DB
	defaultCapacity int64
}

func NewQuotaService(db *gorm.DB, cfg *config.StorageConfig) *QuotaService {
	return &QuotaService{db: db, defaultCapacity: cfg.DefaultCapacity}
}

// UsedCapacity sums the sizes of all files billed to the owner.
func (s *QuotaService) UsedCapacity(storageOwner string) (int64, error) {
	var used int64
	err := s.db.Model(&models.FileMeta{}).
		Where("storage_owner = ?", storageOwner).
		Select("COALESCE(SUM(size), 0)").
		Scan(&used).Error
	if err != nil {
		return 0, err
	}
	return used, nil
}

// Limit returns the owner's configured capacity, falling back to the
// system-wide default when no storage record exists.
func (s *QuotaService) Limit(storageOwner string) (int64, error) {
	var meta models.StorageMeta
	err := s.db.Where("user_id = ?", storageOwner).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.defaultCapacity, nil
		}
		return 0, err
	}
	return meta.Capacity, nil
}

// Admit checks whether incoming bytes fit under the owner's limit. The check
// and the subsequent write are not atomic against concurrent uploads by the
// same owner; two simultaneous uploads can both pass and jointly exceed the
// limit. That race is accepted, documented behavior.
func (s *QuotaService) Admit(storageOwner string, incoming int64) error {
	used, err := s.UsedCapacity(storageOwner)
	if err != nil {
		return err
	}

	limit, err := s.Limit(storageOwner)
	if err != nil {
		return err
	}

	if used+incoming > limit {
		return response.NewBadRequest("Not enough storage")
	}
	return nil
}
