package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/internal/storage"
)

func TestProject_Create_RequiresProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProjectService(db, storage.NewDatabaseStore(db))

	_, err := svc.Create("auth0|noprofile", &CreateProjectRequest{
		Title:      "New Project",
		Objectives: "ship it",
		Status:     string(models.StatusNotStarted),
	})
	appErr := assertAppError(t, err, http.StatusBadRequest)
	if appErr.Message != "user must have a profile to be able to create projects" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}

	seedProfile(t, db, "auth0|creator")
	project, err := svc.Create("auth0|creator", &CreateProjectRequest{
		Title:      "New Project",
		Objectives: "ship it",
		Status:     string(models.StatusNotStarted),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if project.CreatedBy != "auth0|creator" {
		t.Errorf("expected creator auth0|creator, got %q", project.CreatedBy)
	}
}

func TestProject_Delete_RequiresCreator(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProjectService(db, storage.NewDatabaseStore(db))

	project := seedProject(t, db, "auth0|creator")
	admin := seedProfile(t, db, "auth0|admin")
	seedMember(t, db, project, admin, models.RoleAdmin)

	// Even an Admin member cannot delete a project.
	err := svc.Delete(context.Background(), "auth0|admin", project.ID)
	assertAppError(t, err, http.StatusUnauthorized)

	if err := svc.Delete(context.Background(), "auth0|creator", project.ID); err != nil {
		t.Fatalf("creator delete failed: %v", err)
	}
}

func TestProject_Delete_Cascades(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	projects := NewProjectService(db, store)
	uploads := NewUploadService(db, store, testStorageConfig(), nil)

	project := seedProject(t, db, "auth0|creator")
	profile := seedProfile(t, db, "auth0|dev")
	seedMember(t, db, project, profile, models.RoleDeveloper)
	seedTask(t, db, project)

	attachment, err := uploads.Process(context.Background(), &UploadInput{
		ActingUserID: "auth0|creator",
		ProjectID:    project.ID,
		RequiredRole: models.RoleAdmin,
		Kind:         AttachProjectAttachment,
		File: &IncomingFile{
			Name:        "spec.pdf",
			ContentType: "application/pdf",
			Size:        5,
			Reader:      strings.NewReader("bytes"),
		},
	})
	if err != nil {
		t.Fatalf("attachment upload failed: %v", err)
	}

	if err := projects.Delete(context.Background(), "auth0|creator", project.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var members, tasks, files int64
	db.Model(&models.Member{}).Where("project_id = ?", project.ID).Count(&members)
	db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&tasks)
	db.Model(&models.FileMeta{}).Where("id = ?", attachment.ID).Count(&files)
	if members != 0 || tasks != 0 || files != 0 {
		t.Errorf("expected full cascade, left members=%d tasks=%d files=%d", members, tasks, files)
	}

	_, err = store.Open(context.Background(), storage.CategoryAttachments, attachment.Key())
	if err == nil {
		t.Errorf("expected attachment bytes to be removed")
	}
}

func TestProject_DeleteAttachment(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewDatabaseStore(db)
	projects := NewProjectService(db, store)
	uploads := NewUploadService(db, store, testStorageConfig(), nil)

	project := seedProject(t, db, "auth0|creator")
	dev := seedProfile(t, db, "auth0|dev")
	seedMember(t, db, project, dev, models.RoleDeveloper)
	other := seedProject(t, db, "auth0|creator")

	attachment, err := uploads.Process(context.Background(), &UploadInput{
		ActingUserID: "auth0|creator",
		ProjectID:    project.ID,
		RequiredRole: models.RoleAdmin,
		Kind:         AttachProjectAttachment,
		File: &IncomingFile{
			Name:        "spec.pdf",
			ContentType: "application/pdf",
			Size:        5,
			Reader:      strings.NewReader("bytes"),
		},
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	// The file must belong to the named project.
	err = projects.DeleteAttachment(context.Background(), "auth0|creator", other.ID, attachment.ID)
	assertAppError(t, err, http.StatusNotFound)

	// Developer role suffices for attachment removal.
	if err := projects.DeleteAttachment(context.Background(), "auth0|dev", project.ID, attachment.ID); err != nil {
		t.Fatalf("DeleteAttachment failed: %v", err)
	}
}
