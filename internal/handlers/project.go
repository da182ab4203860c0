package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/projectpulse/backend/internal/config"
	"github.com/projectpulse/backend/internal/middleware"
	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/internal/services"
	"github.com/projectpulse/backend/internal/storage"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	uploadService  *services.UploadService
}

func NewProjectHandler(db *gorm.DB, store storage.Store, cfg *config.StorageConfig, queue *services.TaskQueue) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db, store),
		uploadService:  services.NewUploadService(db, store, cfg, queue),
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// List returns the caller's projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	projects, err := h.projectService.List(userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, projects)
}

// GetByID returns a project with its members, tasks and files
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Create creates a new project owned by the caller
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	project, err := h.projectService.Create(userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, project)
}

// Update updates a project (Admin)
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	project, err := h.projectService.Update(userID, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Delete deletes a project and everything it owns (Creator)
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.projectService.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project deleted successfully"})
}

// UploadImage sets or replaces the project image (Admin)
// POST /api/projects/:id/image
func (h *ProjectHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	file, f, err := incomingFile(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	meta, err := h.uploadService.Process(c.Request.Context(), &services.UploadInput{
		ActingUserID: middleware.GetUserID(c),
		ProjectID:    id,
		RequiredRole: models.RoleAdmin,
		Kind:         services.AttachProjectImage,
		File:         file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, meta)
}

// DeleteImage removes the project image (Admin)
// DELETE /api/projects/:id/image
func (h *ProjectHandler) DeleteImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.projectService.DeleteImage(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "image deleted successfully"})
}

// UploadAttachment adds a project attachment (Developer)
// POST /api/projects/:id/attachments
func (h *ProjectHandler) UploadAttachment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	file, f, err := incomingFile(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	meta, err := h.uploadService.Process(c.Request.Context(), &services.UploadInput{
		ActingUserID: middleware.GetUserID(c),
		ProjectID:    id,
		RequiredRole: models.RoleDeveloper,
		Kind:         services.AttachProjectAttachment,
		File:         file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, meta)
}

// DeleteAttachment removes one project attachment (Developer)
// DELETE /api/projects/:id/attachments/:fileId
func (h *ProjectHandler) DeleteAttachment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseID(c, "fileId")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.projectService.DeleteAttachment(c.Request.Context(), userID, id, fileID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "attachment deleted successfully"})
}
