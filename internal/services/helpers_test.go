package services

import (
	"fmt"
	"testing"

	"github.com/projectpulse/backend/internal/config"
	"github.com/projectpulse/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Profile{},
		&models.Project{},
		&models.Member{},
		&models.Task{},
		&models.FileMeta{},
		&models.StorageMeta{},
		&models.FileBlob{},
		&models.FileBlobChunk{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Driver:            "database",
		DefaultCapacity:   104857600,
		MaxImageSize:      2000000,
		MaxAttachmentSize: 105906176,
	}
}

func seedProfile(t *testing.T, db *gorm.DB, userID string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		UserID:    userID,
		FirstName: "Test",
		LastName:  "User",
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return profile
}

func seedProject(t *testing.T, db *gorm.DB, createdBy string) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:      "Test Project",
		Objectives: "ship it",
		Status:     models.StatusInProgress,
		CreatedBy:  createdBy,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return project
}

func seedMember(t *testing.T, db *gorm.DB, project *models.Project, profile *models.Profile, role models.Role) *models.Member {
	t.Helper()
	member := &models.Member{
		UserID:    profile.UserID,
		ProfileID: profile.ID,
		ProjectID: project.ID,
		Role:      role,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}
	return member
}

func seedTask(t *testing.T, db *gorm.DB, project *models.Project) *models.Task {
	t.Helper()
	task := &models.Task{
		ProjectID: project.ID,
		Title:     "Test Task",
		Status:    models.StatusNotStarted,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return task
}

func seedFileMeta(t *testing.T, db *gorm.DB, owner string, size int64) *models.FileMeta {
	t.Helper()
	meta := &models.FileMeta{
		Filename:     "seed.pdf",
		ContentType:  "application/pdf",
		Category:     "attachments",
		Prefix:       fmt.Sprintf("prefix-%s-%d", owner, seedCounter()),
		UploadedBy:   owner,
		StorageOwner: owner,
		Size:         size,
		Available:    true,
	}
	if err := db.Create(meta).Error; err != nil {
		t.Fatalf("failed to seed file meta: %v", err)
	}
	return meta
}

var seedCount int

func seedCounter() int {
	seedCount++
	return seedCount
}
