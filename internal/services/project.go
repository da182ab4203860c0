package services

import (
	"context"
	"errors"

	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/internal/storage"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db    *gorm.DB
	authz *AuthorizationService
	files *FileService
}

func NewProjectService(db *gorm.DB, store storage.Store) *ProjectService {
	return &ProjectService{
		db:    db,
		authz: NewAuthorizationService(db),
		files: NewFileService(db, store),
	}
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Objectives  string `json:"objectives" binding:"required"`
	Status      string `json:"status" binding:"required"`
}

type UpdateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Objectives  string `json:"objectives"`
	Status      string `json:"status"`
}

// Create creates a project owned by the caller. The caller must already
// have a profile; CreatedBy is fixed at creation and never changes.
func (s *ProjectService) Create(userID string, req *CreateProjectRequest) (*models.Project, error) {
	var profileCount int64
	if err := s.db.Model(&models.Profile{}).Where("user_id = ?", userID).Count(&profileCount).Error; err != nil {
		return nil, err
	}
	if profileCount == 0 {
		return nil, response.NewBadRequest("user must have a profile to be able to create projects")
	}

	status := models.WorkStatus(req.Status)
	if !status.Valid() {
		return nil, response.NewBadRequest("invalid project status")
	}

	project := models.Project{
		Title:       req.Title,
		Description: req.Description,
		Objectives:  req.Objectives,
		Status:      status,
		CreatedBy:   userID,
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func (s *ProjectService) Get(projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.
		Preload("Members.Profile").
		Preload("Tasks").
		Preload("Image").
		Preload("Attachments").
		First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project does not exist")
		}
		return nil, err
	}
	return &project, nil
}

// List returns the projects the user created or is a member of.
func (s *ProjectService) List(userID string) ([]models.Project, error) {
	var memberProjectIDs []uint
	err := s.db.Model(&models.Member{}).
		Where("user_id = ?", userID).
		Pluck("project_id", &memberProjectIDs).Error
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	query := s.db.Preload("Image").Order("created_at DESC")
	if len(memberProjectIDs) > 0 {
		query = query.Where("created_by = ? OR id IN ?", userID, memberProjectIDs)
	} else {
		query = query.Where("created_by = ?", userID)
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update requires the Admin role on the project.
func (s *ProjectService) Update(userID string, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.authz.Authorize(userID, projectID, models.RoleAdmin)
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
	if req.Objectives != "" {
		updates["objectives"] = req.Objectives
	}
	if req.Status != "" {
		status := models.WorkStatus(req.Status)
		if !status.Valid() {
			return nil, response.NewBadRequest("invalid project status")
		}
		updates["status"] = status
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return project, nil
}

// Delete requires the Creator role. A project does not implicitly contain
// its members, tasks and files, so removal cascades explicitly: members,
// tasks, image, attachments, then the project row.
func (s *ProjectService) Delete(ctx context.Context, userID string, projectID uint) error {
	project, err := s.authz.Authorize(userID, projectID, models.RoleCreator)
	if err != nil {
		return err
	}

	if err := s.db.Where("project_id = ?", projectID).Delete(&models.Member{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
		return err
	}

	if project.ImageID != nil {
		if err := s.files.Delete(ctx, *project.ImageID); err != nil {
			return err
		}
	}

	var attachmentIDs []uint
	err = s.db.Model(&models.FileMeta{}).
		Where("attachment_project_id = ?", projectID).
		Pluck("id", &attachmentIDs).Error
	if err != nil {
		return err
	}
	for _, id := range attachmentIDs {
		if err := s.files.Delete(ctx, id); err != nil {
			return err
		}
	}

	return s.db.Delete(project).Error
}

// DeleteImage removes the project image. For an explicit removal the file
// goes first and the reference is cleared after; replacements do the
// opposite and commit the new reference before touching the old file.
func (s *ProjectService) DeleteImage(ctx context.Context, userID string, projectID uint) error {
	project, err := s.authz.Authorize(userID, projectID, models.RoleAdmin)
	if err != nil {
		return err
	}

	if project.ImageID == nil {
		return response.NewNotFound("file not found")
	}

	if err := s.files.Delete(ctx, *project.ImageID); err != nil {
		return err
	}

	return s.db.Model(project).Update("image_id", gorm.Expr("NULL")).Error
}

// DeleteAttachment removes one project attachment (Developer role).
func (s *ProjectService) DeleteAttachment(ctx context.Context, userID string, projectID, fileID uint) error {
	_, err := s.authz.Authorize(userID, projectID, models.RoleDeveloper)
	if err != nil {
		return err
	}

	meta, err := s.files.Get(fileID)
	if err != nil {
		return err
	}
	if meta.AttachmentProjectID == nil || *meta.AttachmentProjectID != projectID {
		return response.NewNotFound("file not found")
	}

	return s.files.Delete(ctx, fileID)
}
