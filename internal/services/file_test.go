package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/internal/storage"
	"gorm.io/gorm"
)

func seedStoredFile(t *testing.T, db *gorm.DB, store storage.Store, owner, filename, content string) *models.FileMeta {
	t.Helper()
	ctx := context.Background()

	meta := seedFileMeta(t, db, owner, int64(len(content)))
	if err := db.Model(meta).Update("filename", filename).Error; err != nil {
		t.Fatalf("failed to set filename: %v", err)
	}
	meta.Filename = filename

	err := store.Save(ctx, storage.Category(meta.Category), meta.Key(),
		strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("failed to save file bytes: %v", err)
	}
	return meta
}

func TestFile_OpenStream(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	svc := NewFileService(db, store)

	meta := seedStoredFile(t, db, store, "auth0|owner", "notes.txt", "hello world")

	got, rc, err := svc.OpenStream(context.Background(), meta.ID)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	defer rc.Close()

	if got.Filename != "notes.txt" {
		t.Errorf("expected filename notes.txt, got %q", got.Filename)
	}
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("failed to read stream: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestFile_OpenStream_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFileService(db, storage.NewDatabaseStore(db))

	_, _, err := svc.OpenStream(context.Background(), 9999)
	assertAppError(t, err, http.StatusNotFound)
}

func TestFile_OpenStream_Unavailable(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	svc := NewFileService(db, store)

	meta := seedStoredFile(t, db, store, "auth0|owner", "notes.txt", "hello")
	if err := db.Model(meta).Update("available", false).Error; err != nil {
		t.Fatalf("failed to mark unavailable: %v", err)
	}

	_, _, err := svc.OpenStream(context.Background(), meta.ID)
	assertAppError(t, err, http.StatusNotFound)
}

func TestFile_Rename_PreservesExtension(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	svc := NewFileService(db, store)

	cases := []struct {
		name     string
		current  string
		newBase  string
		expected string
	}{
		{"simple extension", "report.pdf", "summary", "summary.pdf"},
		{"multiple dots keep last", "report.final.pdf", "summary", "summary.pdf"},
		{"no extension", "README", "NOTES", "NOTES"},
		{"dotted new base keeps old extension", "data.json", "v2.backup", "v2.backup.json"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := seedStoredFile(t, db, store, "auth0|owner", tc.current, "content")

			renamed, err := svc.Rename(context.Background(), "auth0|owner", meta.ID, tc.newBase)
			if err != nil {
				t.Fatalf("Rename failed: %v", err)
			}
			if renamed.Filename != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, renamed.Filename)
			}

			// Bytes remain reachable under the new name.
			_, rc, err := svc.OpenStream(context.Background(), meta.ID)
			if err != nil {
				t.Fatalf("OpenStream after rename failed: %v", err)
			}
			rc.Close()
		})
	}
}

func TestFile_Rename_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFileService(db, storage.NewDatabaseStore(db))

	_, err := svc.Rename(context.Background(), "auth0|owner", 9999, "anything")
	assertAppError(t, err, http.StatusNotFound)
}

func TestFile_SetDescription(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	svc := NewFileService(db, store)

	meta := seedStoredFile(t, db, store, "auth0|owner", "notes.txt", "content")

	updated, err := svc.SetDescription("auth0|owner", meta.ID, "meeting notes")
	if err != nil {
		t.Fatalf("SetDescription failed: %v", err)
	}
	if updated.Description == nil || *updated.Description != "meeting notes" {
		t.Errorf("expected description to be set")
	}

	// Empty text unsets the field rather than storing "".
	updated, err = svc.SetDescription("auth0|owner", meta.ID, "")
	if err != nil {
		t.Fatalf("SetDescription with empty text failed: %v", err)
	}
	if updated.Description != nil {
		t.Errorf("expected description to be cleared, got %q", *updated.Description)
	}

	var reloaded models.FileMeta
	if err := db.First(&reloaded, meta.ID).Error; err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if reloaded.Description != nil {
		t.Errorf("expected NULL description in database, got %q", *reloaded.Description)
	}
}

func TestFile_Delete(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	svc := NewFileService(db, store)

	meta := seedStoredFile(t, db, store, "auth0|owner", "notes.txt", "content")

	if err := svc.Delete(context.Background(), meta.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := svc.Get(meta.ID)
	assertAppError(t, err, http.StatusNotFound)

	_, err = store.Open(context.Background(), storage.Category(meta.Category), meta.Key())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected bytes to be gone, got %v", err)
	}
}

func TestFile_Rename_RequiresWriteAccess(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	svc := NewFileService(db, store)

	project := seedProject(t, db, "auth0|creator")
	dev := seedProfile(t, db, "auth0|dev")
	seedMember(t, db, project, dev, models.RoleDeveloper)

	meta := seedStoredFile(t, db, store, "auth0|creator", "report.pdf", "content")
	if err := db.Model(meta).Update("attachment_project_id", project.ID).Error; err != nil {
		t.Fatalf("failed to bind attachment: %v", err)
	}

	// A stranger cannot touch another project's attachment.
	_, err := svc.Rename(context.Background(), "auth0|stranger", meta.ID, "hijacked")
	assertAppError(t, err, http.StatusUnauthorized)

	var reloaded models.FileMeta
	if err := db.First(&reloaded, meta.ID).Error; err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if reloaded.Filename != "report.pdf" {
		t.Errorf("expected denied rename to leave the filename, got %q", reloaded.Filename)
	}

	_, err = svc.SetDescription("auth0|stranger", meta.ID, "defaced")
	assertAppError(t, err, http.StatusUnauthorized)

	// Developer on the owning project is enough.
	renamed, err := svc.Rename(context.Background(), "auth0|dev", meta.ID, "summary")
	if err != nil {
		t.Fatalf("expected developer rename to pass: %v", err)
	}
	if renamed.Filename != "summary.pdf" {
		t.Errorf("expected summary.pdf, got %q", renamed.Filename)
	}
}

func TestFile_Rename_ProjectImageRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	svc := NewFileService(db, store)

	project := seedProject(t, db, "auth0|creator")
	dev := seedProfile(t, db, "auth0|dev")
	seedMember(t, db, project, dev, models.RoleDeveloper)

	meta := seedStoredFile(t, db, store, "auth0|creator", "logo.png", "image")
	if err := db.Model(project).Update("image_id", meta.ID).Error; err != nil {
		t.Fatalf("failed to set project image: %v", err)
	}

	_, err := svc.Rename(context.Background(), "auth0|dev", meta.ID, "new-logo")
	assertAppError(t, err, http.StatusUnauthorized)

	if _, err := svc.Rename(context.Background(), "auth0|creator", meta.ID, "new-logo"); err != nil {
		t.Errorf("expected creator rename to pass: %v", err)
	}
}

func TestFile_Describe_ProfileImageOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	svc := NewFileService(db, store)

	profile := seedProfile(t, db, "auth0|user")
	meta := seedStoredFile(t, db, store, "auth0|user", "avatar.png", "image")
	if err := db.Model(profile).Update("image_id", meta.ID).Error; err != nil {
		t.Fatalf("failed to set profile image: %v", err)
	}

	_, err := svc.SetDescription("auth0|intruder", meta.ID, "not mine")
	assertAppError(t, err, http.StatusUnauthorized)

	if _, err := svc.SetDescription("auth0|user", meta.ID, "my avatar"); err != nil {
		t.Errorf("expected owner describe to pass: %v", err)
	}
}

func TestFile_Delete_FreesQuota(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	files := NewFileService(db, store)
	quota := NewQuotaService(db, testStorageConfig())

	meta := seedStoredFile(t, db, store, "auth0|owner", "big.pdf", strings.Repeat("x", 64))

	used, err := quota.UsedCapacity("auth0|owner")
	if err != nil {
		t.Fatalf("UsedCapacity failed: %v", err)
	}
	if used != 64 {
		t.Fatalf("expected 64 used before delete, got %d", used)
	}

	if err := files.Delete(context.Background(), meta.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	used, err = quota.UsedCapacity("auth0|owner")
	if err != nil {
		t.Fatalf("UsedCapacity failed: %v", err)
	}
	if used != 0 {
		t.Errorf("expected delete to free quota, still using %d", used)
	}
}
