package services

import (
	"errors"

	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

// AuthorizationService decides whether a user may act on a project at a
// required role threshold. Decisions are read-only and made from a fresh
// read on every call, so role changes take effect on the next check.
type AuthorizationService struct {
	db *gorm.DB
}

func NewAuthorizationService(db *gorm.DB) *AuthorizationService {
	return &AuthorizationService{db: db}
}

// Authorize resolves the project and checks the caller's effective role.
// The project creator bypasses role checks entirely; everyone else needs a
// membership with role >= required.
func (s *AuthorizationService) Authorize(userID string, projectID uint, required models.Role) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project does not exist")
		}
		return nil, err
	}

	if project.CreatedBy == userID {
		return &project, nil
	}

	var members []models.Member
	if err := s.db.Preload("Profile").Where("project_id = ?", projectID).Find(&members).Error; err != nil {
		return nil, err
	}

	for _, member := range members {
		if member.UserID == userID && member.Role >= required {
			return &project, nil
		}
	}

	return nil, response.NewNotAuthorized("permission denied, please contact the project admin")
}

// AuthorizeByMember resolves the member's owning project and delegates to
// Authorize, returning both.
func (s *AuthorizationService) AuthorizeByMember(userID string, memberID uint, required models.Role) (*models.Project, *models.Member, error) {
	var member models.Member
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("member does not exist")
		}
		return nil, nil, err
	}

	project, err := s.Authorize(userID, member.ProjectID, required)
	if err != nil {
		return nil, nil, err
	}

	return project, &member, nil
}

// AuthorizeByTask resolves the task's owning project and delegates to
// Authorize, returning both.
func (s *AuthorizationService) AuthorizeByTask(userID string, taskID uint, required models.Role) (*models.Project, *models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("task does not exist")
		}
		return nil, nil, err
	}

	project, err := s.Authorize(userID, task.ProjectID, required)
	if err != nil {
		return nil, nil, err
	}

	return project, &task, nil
}
