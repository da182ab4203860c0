package services

import (
	"context"
	"time"

	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/internal/storage"
	"github.com/projectpulse/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// orphanGracePeriod keeps the sweep from racing an in-flight upload whose
// metadata row exists but whose entity reference has not committed yet.
const orphanGracePeriod = time.Hour

// CleanupService reconciles files whose two-step delete or attach was
// interrupted: rows marked unavailable by a deferred deletion, and rows no
// entity references anymore.
type CleanupService struct {
	db    *gorm.DB
	files *FileService
}

func NewCleanupService(db *gorm.DB, store storage.Store) *CleanupService {
	return &CleanupService{db: db, files: NewFileService(db, store)}
}

// Sweep removes unavailable and orphaned files. Errors on individual files
// are logged and skipped; the next sweep retries them.
func (s *CleanupService) Sweep(ctx context.Context) {
	var ids []uint
	err := s.db.Model(&models.FileMeta{}).
		Where("available = ?", false).
		Pluck("id", &ids).Error
	if err != nil {
		logger.Errorf("[Cleanup] failed to list unavailable files: %v", err)
		return
	}

	cutoff := time.Now().Add(-orphanGracePeriod)

	var orphanIDs []uint
	err = s.db.Model(&models.FileMeta{}).
		Where("created_at < ?", cutoff).
		Where("attachment_project_id IS NULL").
		Where("id NOT IN (?)", s.db.Model(&models.Project{}).Select("image_id").Where("image_id IS NOT NULL")).
		Where("id NOT IN (?)", s.db.Model(&models.Profile{}).Select("image_id").Where("image_id IS NOT NULL")).
		Pluck("id", &orphanIDs).Error
	if err != nil {
		logger.Errorf("[Cleanup] failed to list orphaned files: %v", err)
		return
	}

	ids = append(ids, orphanIDs...)
	if len(ids) == 0 {
		return
	}

	removed := 0
	for _, id := range ids {
		if err := s.files.Delete(ctx, id); err != nil {
			logger.Warnf("[Cleanup] failed to remove file %d: %v", id, err)
			continue
		}
		removed++
	}

	logger.Infof("[Cleanup] removed %d of %d stale files", removed, len(ids))
}

// StartCleanupScheduler runs the sweep hourly.
func StartCleanupScheduler(db *gorm.DB, store storage.Store) *cron.Cron {
	service := NewCleanupService(db, store)

	c := cron.New()
	c.AddFunc("@hourly", func() {
		service.Sweep(context.Background())
	})
	c.Start()

	logger.Infof("[Cleanup] scheduler started")
	return c
}
