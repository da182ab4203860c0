package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/projectpulse/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStoreDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.FileBlob{}, &models.FileBlobChunk{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestDatabaseStore_SaveAndOpen(t *testing.T) {
	store := NewDatabaseStore(setupStoreDB(t))
	ctx := context.Background()

	content := "hello attachment"
	err := store.Save(ctx, CategoryAttachments, "abc/report.pdf", strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := store.Open(ctx, CategoryAttachments, "abc/report.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if string(got) != content {
		t.Errorf("read %q, expected %q", got, content)
	}
}

func TestDatabaseStore_SaveChunked(t *testing.T) {
	store := NewDatabaseStore(setupStoreDB(t))
	ctx := context.Background()

	// Larger than one chunk so the read path has to cross a chunk boundary.
	content := bytes.Repeat([]byte("x"), chunkSize+1024)
	err := store.Save(ctx, CategoryAttachments, "big/data.bin", bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := store.Open(ctx, CategoryAttachments, "big/data.bin")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if len(got) != len(content) {
		t.Errorf("read %d bytes, expected %d", len(got), len(content))
	}
}

func TestDatabaseStore_Open_NotFound(t *testing.T) {
	store := NewDatabaseStore(setupStoreDB(t))

	_, err := store.Open(context.Background(), CategoryImages, "missing/file.png")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Open() error = %v, expected ErrNotFound", err)
	}
}

func TestDatabaseStore_Rename(t *testing.T) {
	store := NewDatabaseStore(setupStoreDB(t))
	ctx := context.Background()

	if err := store.Save(ctx, CategoryAttachments, "p1/old.pdf", strings.NewReader("data"), 4); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Rename(ctx, CategoryAttachments, "p1/old.pdf", "p1/new.pdf"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if _, err := store.Open(ctx, CategoryAttachments, "p1/old.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old key should be gone, got %v", err)
	}
	rc, err := store.Open(ctx, CategoryAttachments, "p1/new.pdf")
	if err != nil {
		t.Fatalf("Open(new) error = %v", err)
	}
	rc.Close()
}

func TestDatabaseStore_Rename_NotFound(t *testing.T) {
	store := NewDatabaseStore(setupStoreDB(t))

	err := store.Rename(context.Background(), CategoryAttachments, "nope/a.pdf", "nope/b.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename() error = %v, expected ErrNotFound", err)
	}
}

func TestDatabaseStore_Delete_Idempotent(t *testing.T) {
	store := NewDatabaseStore(setupStoreDB(t))
	ctx := context.Background()

	if err := store.Save(ctx, CategoryImages, "p2/pic.png", strings.NewReader("img"), 3); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Delete(ctx, CategoryImages, "p2/pic.png"); err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}
	// Second delete after the bytes are gone must not surface an error.
	if err := store.Delete(ctx, CategoryImages, "p2/pic.png"); err != nil {
		t.Errorf("second Delete() error = %v, expected nil", err)
	}
}

func TestDatabaseStore_SaveOverwrites(t *testing.T) {
	store := NewDatabaseStore(setupStoreDB(t))
	ctx := context.Background()

	if err := store.Save(ctx, CategoryImages, "p3/a.png", strings.NewReader("first"), 5); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, CategoryImages, "p3/a.png", strings.NewReader("second"), 6); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	rc, err := store.Open(ctx, CategoryImages, "p3/a.png")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	got, _ := io.ReadAll(rc)
	if string(got) != "second" {
		t.Errorf("read %q, expected %q", got, "second")
	}
}
