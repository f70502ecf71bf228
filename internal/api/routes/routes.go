package routes

import (
	"github.com/gin-gonic/gin"

	"scrapeflow/backend/internal/api/handlers"
	"scrapeflow/backend/internal/api/middleware"
	"scrapeflow/backend/internal/config"
)

func SetupRoutes(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// Global middleware
	router.Use(middleware.CORSMiddleware())
	router.Use(gin.Recovery())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no auth required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", handlers.Login)
			auth.POST("/register", handlers.Register)
		}

		// Health check
		v1.GET("/health", handlers.HealthCheck)

		// WebSocket endpoint (session id acts as implicit authorization)
		v1.GET("/ws/recording", handlers.RecordingWebSocket)

		// Protected routes (auth required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User management
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile)
				users.PUT("/profile", handlers.UpdateProfile)
			}

			// Project management
			projects := protected.Group("/projects")
			{
				projects.GET("", handlers.GetProjects)
				projects.POST("", handlers.CreateProject)
				projects.GET("/:id", handlers.GetProject)
				projects.PUT("/:id", handlers.UpdateProject)
				projects.DELETE("/:id", handlers.DeleteProject)
			}

			// Target site management
			sites := protected.Group("/sites")
			{
				sites.GET("", handlers.GetSites)
				sites.POST("", handlers.CreateSite)
				sites.GET("/:id", handlers.GetSite)
				sites.PUT("/:id", handlers.UpdateSite)
				sites.DELETE("/:id", handlers.DeleteSite)
			}

			// Device presets
			devices := protected.Group("/devices")
			{
				devices.GET("", handlers.GetDevices)
				devices.POST("", handlers.CreateDevice)
				devices.GET("/:id", handlers.GetDevice)
				devices.PUT("/:id", handlers.UpdateDevice)
				devices.DELETE("/:id", handlers.DeleteDevice)
			}

			// Saved scrape tasks
			tasks := protected.Group("/tasks")
			{
				tasks.GET("", handlers.GetTasks)
				tasks.GET("/:id", handlers.GetTask)
				tasks.PUT("/:id", handlers.UpdateTask)
				tasks.DELETE("/:id", handlers.DeleteTask)
			}

			// Recording functionality
			recording := protected.Group("/recording")
			{
				recording.POST("/start", handlers.StartRecording)
				recording.POST("/stop", handlers.StopRecording)
				recording.GET("/status", handlers.GetRecordingStatus)
				recording.POST("/save", handlers.SaveRecording)
			}
		}
	}

	return router
}
