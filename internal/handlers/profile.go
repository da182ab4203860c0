package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/projectpulse/backend/internal/config"
	"github.com/projectpulse/backend/internal/middleware"
	"github.com/projectpulse/backend/internal/services"
	"github.com/projectpulse/backend/internal/storage"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	uploadService  *services.UploadService
}

func NewProfileHandler(db *gorm.DB, store storage.Store, cfg *config.Config, queue *services.TaskQueue) *ProfileHandler {
	var identity *services.IdentityService
	if cfg.Identity.Domain != "" {
		identity = services.NewIdentityService(&cfg.Identity)
	}
	return &ProfileHandler{
		profileService: services.NewProfileService(db, store, &cfg.Storage, identity),
		uploadService:  services.NewUploadService(db, store, &cfg.Storage, queue),
	}
}

// Create creates the caller's profile
// POST /api/profiles
func (h *ProfileHandler) Create(c *gin.Context) {
	var req services.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	profile, err := h.profileService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, profile)
}

// GetMine returns the caller's own profile
// GET /api/profiles/me
func (h *ProfileHandler) GetMine(c *gin.Context) {
	userID := middleware.GetUserID(c)

	profile, err := h.profileService.GetByUser(userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// GetByID returns a profile by ID
// GET /api/profiles/:id
func (h *ProfileHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	profile, err := h.profileService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// Update updates the caller's profile
// PUT /api/profiles/:id
func (h *ProfileHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	profile, err := h.profileService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// Delete deletes the caller's profile
// DELETE /api/profiles/:id
func (h *ProfileHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.profileService.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "profile deleted successfully"})
}

// UploadImage sets or replaces the caller's profile image
// POST /api/profiles/:id/image
func (h *ProfileHandler) UploadImage(c *gin.Context) {
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
		ProfileID:    id,
		Kind:         services.AttachProfileImage,
		File:         file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, meta)
}

// DeleteImage removes the caller's profile image
// DELETE /api/profiles/:id/image
func (h *ProfileHandler) DeleteImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.profileService.DeleteImage(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "image deleted successfully"})
}
