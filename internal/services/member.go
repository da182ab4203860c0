package services

import (
	"errors"

	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

type MemberService struct {
	db    *gorm.DB
	authz *AuthorizationService
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db, authz: NewAuthorizationService(db)}
}

type AddMemberRequest struct {
	ProjectID uint        `json:"project_id" binding:"required"`
	ProfileID uint        `json:"profile_id" binding:"required"`
	Role      models.Role `json:"role" binding:"required"`
}

type UpdateMemberRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// validateRole enforces the Creator-role invariant: exactly the project's
// creator may hold Creator, and if the creator joins at all it must be as
// Creator.
func validateRole(project *models.Project, profileUserID string, role models.Role) error {
	if !role.Valid() {
		return response.NewBadRequest("invalid role assignment")
	}
	if role == models.RoleCreator && profileUserID != project.CreatedBy {
		return response.NewBadRequest("invalid role assignment")
	}
	if profileUserID == project.CreatedBy && role != models.RoleCreator {
		return response.NewBadRequest("invalid role assignment")
	}
	return nil
}

// Add joins a profile to a project (Admin required). A profile may join a
// given project at most once.
func (s *MemberService) Add(actingUserID string, req *AddMemberRequest) (*models.Member, error) {
	project, err := s.authz.Authorize(actingUserID, req.ProjectID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := s.db.First(&profile, req.ProfileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("profile does not exist")
		}
		return nil, err
	}

	if err := validateRole(project, profile.UserID, req.Role); err != nil {
		return nil, err
	}

	var existing int64
	err = s.db.Model(&models.Member{}).
		Where("project_id = ? AND profile_id = ?", req.ProjectID, req.ProfileID).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, response.NewBadRequest("profile is already a member of this project")
	}

	member := models.Member{
		UserID:    profile.UserID,
		ProfileID: profile.ID,
		ProjectID: project.ID,
		Role:      req.Role,
	}

	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}

	return &member, nil
}

// Update changes a member's role (Admin required), under the same role
// invariants as Add.
func (s *MemberService) Update(actingUserID string, memberID uint, req *UpdateMemberRequest) (*models.Member, error) {
	project, member, err := s.authz.AuthorizeByMember(actingUserID, memberID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if err := validateRole(project, member.UserID, req.Role); err != nil {
		return nil, err
	}

	if err := s.db.Model(member).Update("role", req.Role).Error; err != nil {
		return nil, err
	}

	member.Role = req.Role
	return member, nil
}

// Delete removes a member (Admin required). Tasks assigned to the member
// lose their assignee: the member reference and the denormalized user id
// are cleared together, never independently.
func (s *MemberService) Delete(actingUserID string, memberID uint) error {
	_, member, err := s.authz.AuthorizeByMember(actingUserID, memberID, models.RoleAdmin)
	if err != nil {
		return err
	}

	err = s.db.Model(&models.Task{}).
		Where("assignee_id = ?", member.ID).
		Updates(map[string]interface{}{
			"assignee_id":      gorm.Expr("NULL"),
			"assignee_user_id": "",
		}).Error
	if err != nil {
		return err
	}

	return s.db.Delete(member).Error
}

// List returns the project's members with their profile details.
func (s *MemberService) List(projectID uint) ([]models.Member, error) {
	var members []models.Member
	err := s.db.Preload("Profile").
		Where("project_id = ?", projectID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
