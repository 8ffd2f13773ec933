// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/artfolio/artfolio-backend/internal/config"
	"github.com/artfolio/artfolio-backend/internal/handlers"
	"github.com/artfolio/artfolio-backend/internal/middleware"
	"github.com/artfolio/artfolio-backend/internal/services"
	"github.com/artfolio/artfolio-backend/internal/utils"
)

// Initialize wires the service graph and the route table. The returned SLA
// monitor is not started; main owns its lifecycle so shutdown can stop it
// before the database closes.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.SLAMonitor) {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	blockService := services.NewBlockService(db)
	imageService := services.NewImageService(db, storageService)
	reportService := services.NewReportService(db, notificationService, cfg.Moderation.SLAWindow)
	moderationService := services.NewModerationService(db, notificationService, storageService)
	slaMonitor := services.NewSLAMonitor(reportService, notificationService, cfg.Moderation)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	blockHandler := handlers.NewBlockHandler(blockService)
	imageHandler := handlers.NewImageHandler(imageService)
	reportHandler := handlers.NewReportHandler(reportService)
	adminReportHandler := handlers.NewAdminReportHandler(reportService, moderationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Artwork routes
		images := v1.Group("/images")
		{
			images.GET("", middleware.OptionalAuth(), imageHandler.GetImages)
			images.GET("/:id", middleware.OptionalAuth(), imageHandler.GetImage)

			protected := images.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", middleware.UploadRateLimit(), imageHandler.Upload)
				protected.DELETE("/:id", imageHandler.Delete)
			}
		}

		// Report routes
		reports := v1.Group("/reports")
		reports.Use(middleware.AuthRequired())
		{
			reports.GET("/reasons", reportHandler.GetReportReasons)
			reports.GET("/my-reports", reportHandler.GetMyReports)

			submit := reports.Group("")
			submit.Use(middleware.ReportRateLimit())
			{
				submit.POST("/image/:imageId", reportHandler.ReportImage)
				submit.POST("/user/:userId", reportHandler.ReportUser)
			}
		}

		// Block routes
		blocks := v1.Group("/blocks")
		blocks.Use(middleware.AuthRequired())
		{
			blocks.GET("", blockHandler.GetBlocks)
			blocks.GET("/ids", blockHandler.GetBlockedIDs)
			blocks.GET("/check/:userId", blockHandler.CheckBlock)
			blocks.POST("/:userId", blockHandler.BlockUser)
			blocks.DELETE("/:userId", blockHandler.UnblockUser)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}

		// Admin moderation routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			adminReports := admin.Group("/reports")
			{
				adminReports.GET("", adminReportHandler.GetReports)
				adminReports.GET("/stats", adminReportHandler.GetStats)
				adminReports.GET("/:id", adminReportHandler.GetReport)
				adminReports.PATCH("/:id/status", adminReportHandler.UpdateStatus)
				adminReports.POST("/:id/action/warn-user", adminReportHandler.WarnUser)
				adminReports.POST("/:id/action/suspend-user", adminReportHandler.SuspendUser)
				adminReports.POST("/:id/action/ban-user", adminReportHandler.BanUser)
				adminReports.POST("/:id/action/remove-content", adminReportHandler.RemoveContent)
				adminReports.POST("/:id/action/dismiss", adminReportHandler.Dismiss)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r, slaMonitor
}
