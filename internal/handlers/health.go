package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/projectpulse/backend/pkg/response"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports service and database health
// GET /api/health
func (h *HealthHandler) Check(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		response.ServerError(c, "database unreachable")
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}
