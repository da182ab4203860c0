package services

import (
	"errors"

	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

type TaskService struct {
	db    *gorm.DB
	authz *AuthorizationService
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db, authz: NewAuthorizationService(db)}
}

type CreateTaskRequest struct {
	ProjectID   uint   `json:"project_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"required"`
	AssigneeID  *uint  `json:"assignee_id"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	// AssigneeID distinguishes three states: absent leaves the assignee
	// untouched, 0 clears it, anything else reassigns.
	AssigneeID *uint `json:"assignee_id"`
}

// resolveAssignee loads the member and checks it belongs to the project.
func (s *TaskService) resolveAssignee(projectID, memberID uint) (*models.Member, error) {
	var member models.Member
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewBadRequest("assignee must be a member of the project")
		}
		return nil, err
	}
	if member.ProjectID != projectID {
		return nil, response.NewBadRequest("assignee must be a member of the project")
	}
	return &member, nil
}

// Create adds a task to a project (Developer required).
func (s *TaskService) Create(actingUserID string, req *CreateTaskRequest) (*models.Task, error) {
	project, err := s.authz.Authorize(actingUserID, req.ProjectID, models.RoleDeveloper)
	if err != nil {
		return nil, err
	}

	status := models.WorkStatus(req.Status)
	if !status.Valid() {
		return nil, response.NewBadRequest("invalid task status")
	}

	task := models.Task{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
	}

	if req.AssigneeID != nil && *req.AssigneeID != 0 {
		member, err := s.resolveAssignee(project.ID, *req.AssigneeID)
		if err != nil {
			return nil, err
		}
		task.AssigneeID = &member.ID
		task.AssigneeUserID = member.UserID
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// Update modifies a task (Developer required). Assignee and the
// denormalized assignee user id change together in one update.
func (s *TaskService) Update(actingUserID string, taskID uint, req *UpdateTaskRequest) (*models.Task, error) {
	project, task, err := s.authz.AuthorizeByTask(actingUserID, taskID, models.RoleDeveloper)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Status != "" {
		status := models.WorkStatus(req.Status)
		if !status.Valid() {
			return nil, response.NewBadRequest("invalid task status")
		}
		updates["status"] = status
	}

	if req.AssigneeID != nil {
		if *req.AssigneeID == 0 {
			updates["assignee_id"] = gorm.Expr("NULL")
			updates["assignee_user_id"] = ""
		} else {
			member, err := s.resolveAssignee(project.ID, *req.AssigneeID)
			if err != nil {
				return nil, err
			}
			updates["assignee_id"] = member.ID
			updates["assignee_user_id"] = member.UserID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	var updated models.Task
	if err := s.db.First(&updated, taskID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a task (Developer required).
func (s *TaskService) Delete(actingUserID string, taskID uint) error {
	_, task, err := s.authz.AuthorizeByTask(actingUserID, taskID, models.RoleDeveloper)
	if err != nil {
		return err
	}
	return s.db.Delete(task).Error
}

// List returns the project's tasks.
func (s *TaskService) List(projectID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.Preload("Assignee").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
