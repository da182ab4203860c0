package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/projectpulse/backend/internal/config"
	"github.com/projectpulse/backend/internal/handlers"
	"github.com/projectpulse/backend/internal/middleware"
	"github.com/projectpulse/backend/internal/models"
	"github.com/projectpulse/backend/internal/services"
	"github.com/projectpulse/backend/internal/storage"
	"github.com/projectpulse/backend/internal/utils"
	"github.com/projectpulse/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize JWT secret
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	// Initialize the file store variant picked by configuration
	store, err := storage.New(context.Background(), &cfg.Storage, db)
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}

	// Start the deferred-delete worker when redis is configured
	queue := services.NewTaskQueue(&cfg.Redis, services.NewFileService(db, store))
	if queue != nil {
		if err := queue.Start(); err != nil {
			logger.Warnf("[Main] task queue failed to start, falling back to inline deletes: %v", err)
			queue = nil
		} else {
			defer queue.Stop()
		}
	}

	// Start the hourly orphan sweep
	cleanupCron := services.StartCleanupScheduler(db, store)
	defer cleanupCron.Stop()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Create router
	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS())

	// Health check endpoint
	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/health", healthHandler.Check)

	// API routes
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		// Profiles
		profileHandler := handlers.NewProfileHandler(db, store, cfg, queue)
		api.POST("/profiles", profileHandler.Create)
		api.GET("/profiles/me", profileHandler.GetMine)
		api.GET("/profiles/:id", profileHandler.GetByID)
		api.PUT("/profiles/:id", profileHandler.Update)
		api.DELETE("/profiles/:id", profileHandler.Delete)
		api.POST("/profiles/:id/image", profileHandler.UploadImage)
		api.DELETE("/profiles/:id/image", profileHandler.DeleteImage)

		// Projects
		projectHandler := handlers.NewProjectHandler(db, store, &cfg.Storage, queue)
		api.GET("/projects", projectHandler.List)
		api.GET("/projects/:id", projectHandler.GetByID)
		api.POST("/projects", projectHandler.Create)
		api.PUT("/projects/:id", projectHandler.Update)
		api.DELETE("/projects/:id", projectHandler.Delete)
		api.POST("/projects/:id/image", projectHandler.UploadImage)
		api.DELETE("/projects/:id/image", projectHandler.DeleteImage)
		api.POST("/projects/:id/attachments", projectHandler.UploadAttachment)
		api.DELETE("/projects/:id/attachments/:fileId", projectHandler.DeleteAttachment)

		// Members
		memberHandler := handlers.NewMemberHandler(db)
		api.POST("/members", memberHandler.Add)
		api.PUT("/members/:id", memberHandler.Update)
		api.DELETE("/members/:id", memberHandler.Delete)
		api.GET("/projects/:id/members", memberHandler.ListByProject)

		// Tasks
		taskHandler := handlers.NewTaskHandler(db)
		api.POST("/tasks", taskHandler.Create)
		api.PUT("/tasks/:id", taskHandler.Update)
		api.DELETE("/tasks/:id", taskHandler.Delete)
		api.GET("/projects/:id/tasks", taskHandler.ListByProject)

		// Files
		fileHandler := handlers.NewFileHandler(db, store)
		api.GET("/files/:id", fileHandler.Download)
		api.PUT("/files/:id/name", fileHandler.Rename)
		api.PUT("/files/:id/description", fileHandler.Describe)
	}

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("[Main] server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
