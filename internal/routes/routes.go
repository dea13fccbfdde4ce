package routes

import (
	"net/http"

	"project-management-api/internal/apperr"
	"project-management-api/internal/config"
	"project-management-api/internal/handlers"
	"project-management-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	apperr.UseJSONFieldNames()

	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Timeout(cfg.RequestTimeout),
	)

	ginRouter.NoRoute(func(c *gin.Context) {
		apperr.Write(c, apperr.NotFound())
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Management API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "API OK"})
		})
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		protectedRoutes.POST("/logout", handlers.Logout)

		// Current user and team
		protectedRoutes.GET("/user", handlers.GetProfile)
		protectedRoutes.PUT("/user", handlers.UpdateProfile)
		protectedRoutes.GET("/users", handlers.GetAllUsers)

		// Project endpoints
		protectedRoutes.GET("/projects", handlers.GetProjects)
		protectedRoutes.POST("/projects", handlers.CreateProject)
		protectedRoutes.GET("/projects/:id", handlers.GetProjectByID)
		protectedRoutes.PUT("/projects/:id", handlers.UpdateProject)
		protectedRoutes.DELETE("/projects/:id", handlers.DeleteProject)

		// Task endpoints
		protectedRoutes.GET("/tasks", handlers.GetTasks)
		protectedRoutes.POST("/tasks", handlers.CreateTask)
		protectedRoutes.GET("/tasks/:id", handlers.GetTaskByID)
		protectedRoutes.PUT("/tasks/:id", handlers.UpdateTask)
		protectedRoutes.DELETE("/tasks/:id", handlers.DeleteTask)

		// Comment endpoints
		protectedRoutes.GET("/tasks/:id/comments", handlers.GetComments)
		protectedRoutes.POST("/tasks/:id/comments", handlers.CreateComment)
		protectedRoutes.PUT("/comments/:id", handlers.UpdateComment)
		protectedRoutes.DELETE("/comments/:id", handlers.DeleteComment)
	}

	// Admin reporting
	adminRoutes := protectedRoutes.Group("/admin")
	adminRoutes.Use(middleware.RequireAdmin())
	{
		adminRoutes.GET("", handlers.AdminDashboard)
		adminRoutes.GET("/stats", handlers.AdminGlobalStats)
		adminRoutes.GET("/users", handlers.AdminUsers)
		adminRoutes.GET("/users/:id/stats", handlers.AdminUserStats)
		adminRoutes.GET("/projects", handlers.AdminProjects)
		adminRoutes.GET("/projects/:id/stats", handlers.AdminProjectStats)
		adminRoutes.GET("/tasks", handlers.AdminTasks)
	}

	return ginRouter
}
