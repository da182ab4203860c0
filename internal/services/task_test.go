package services

import (
	"net/http"
	"testing"

	"github.com/projectpulse/backend/internal/models"
)

func TestTask_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	project := seedProject(t, db, "auth0|creator")
	profile := seedProfile(t, db, "auth0|dev")
	member := seedMember(t, db, project, profile, models.RoleDeveloper)

	task, err := svc.Create("auth0|dev", &CreateTaskRequest{
		ProjectID:  project.ID,
		Title:      "wire the API",
		Status:     string(models.StatusNotStarted),
		AssigneeID: &member.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.AssigneeID == nil || *task.AssigneeID != member.ID {
		t.Errorf("expected assignee %d", member.ID)
	}
	if task.AssigneeUserID != "auth0|dev" {
		t.Errorf("expected denormalized assignee user id, got %q", task.AssigneeUserID)
	}
}

func TestTask_Create_AssigneeMustBelongToProject(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	project := seedProject(t, db, "auth0|creator")
	otherProject := seedProject(t, db, "auth0|creator")
	profile := seedProfile(t, db, "auth0|dev")
	foreignMember := seedMember(t, db, otherProject, profile, models.RoleDeveloper)

	_, err := svc.Create("auth0|creator", &CreateTaskRequest{
		ProjectID:  project.ID,
		Title:      "misfiled",
		Status:     string(models.StatusNotStarted),
		AssigneeID: &foreignMember.ID,
	})
	appErr := assertAppError(t, err, http.StatusBadRequest)
	if appErr.Message != "assignee must be a member of the project" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
}

func TestTask_Create_InvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	project := seedProject(t, db, "auth0|creator")

	_, err := svc.Create("auth0|creator", &CreateTaskRequest{
		ProjectID: project.ID,
		Title:     "bad status",
		Status:    "Procrastinating",
	})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestTask_Update_AssigneeTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	project := seedProject(t, db, "auth0|creator")
	profile := seedProfile(t, db, "auth0|dev")
	member := seedMember(t, db, project, profile, models.RoleDeveloper)
	task := seedTask(t, db, project)

	// Absent assignee field leaves the assignment untouched.
	assigned, err := svc.Update("auth0|creator", task.ID, &UpdateTaskRequest{
		AssigneeID: &member.ID,
	})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if assigned.AssigneeID == nil || assigned.AssigneeUserID != "auth0|dev" {
		t.Fatalf("expected task to be assigned")
	}

	kept, err := svc.Update("auth0|creator", task.ID, &UpdateTaskRequest{
		Title: "renamed",
	})
	if err != nil {
		t.Fatalf("title-only update failed: %v", err)
	}
	if kept.AssigneeID == nil || kept.AssigneeUserID == "" {
		t.Errorf("expected assignment to survive an unrelated update")
	}

	// Zero clears both halves of the reference.
	zero := uint(0)
	cleared, err := svc.Update("auth0|creator", task.ID, &UpdateTaskRequest{
		AssigneeID: &zero,
	})
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if cleared.AssigneeID != nil {
		t.Errorf("expected assignee to be cleared")
	}
	if cleared.AssigneeUserID != "" {
		t.Errorf("expected assignee user id to be cleared, got %q", cleared.AssigneeUserID)
	}
}

func TestTask_Delete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	project := seedProject(t, db, "auth0|creator")
	task := seedTask(t, db, project)

	if err := svc.Delete("auth0|creator", task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	tasks, err := svc.List(project.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks after delete, got %d", len(tasks))
	}
}

func TestTask_Delete_RequiresDeveloper(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(db)

	project := seedProject(t, db, "auth0|creator")
	profile := seedProfile(t, db, "auth0|contributor")
	seedMember(t, db, project, profile, models.RoleContributor)
	task := seedTask(t, db, project)

	err := svc.Delete("auth0|contributor", task.ID)
	assertAppError(t, err, http.StatusUnauthorized)
}
