package handlers

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/projectpulse/backend/internal/middleware"
	"github.com/projectpulse/backend/internal/services"
	"github.com/projectpulse/backend/internal/storage"
	"github.com/projectpulse/backend/pkg/logger"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(db *gorm.DB, store storage.Store) *FileHandler {
	return &FileHandler{fileService: services.NewFileService(db, store)}
}

type renameFileRequest struct {
	Name string `json:"name" binding:"required"`
}

type describeFileRequest struct {
	// Empty description unsets the field.
	Description string `json:"description"`
}

// Download streams the file's bytes to the client
// GET /api/files/:id
func (h *FileHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	meta, rc, err := h.fileService.OpenStream(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", meta.ContentType)
	c.Header("Content-Length", strconv.FormatInt(meta.Size, 10))
	c.Header("Content-Disposition", `attachment; filename="`+meta.Filename+`"`)

	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Headers are already out; a broken pipe mid-stream only gets logged.
		logger.Warnf("[File] streaming file %d aborted: %v", id, err)
	}
}

// Rename gives a file a new base name, keeping its extension
// PUT /api/files/:id/name
func (h *FileHandler) Rename(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req renameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	meta, err := h.fileService.Rename(c.Request.Context(), middleware.GetUserID(c), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, meta)
}

// Describe sets or clears a file's description
// PUT /api/files/:id/description
func (h *FileHandler) Describe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req describeFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	meta, err := h.fileService.SetDescription(middleware.GetUserID(c), id, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, meta)
}
