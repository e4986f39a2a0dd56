package routes

import (
	"fitcomp/internal/api/handlers"
	"fitcomp/internal/api/middleware"
	"fitcomp/internal/config"
	"fitcomp/internal/models"
	"fitcomp/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	// Initialize services
	authService := services.NewAuthService(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(cfg)
	competitionHandler := handlers.NewCompetitionHandler()
	entryHandler := handlers.NewEntryHandler()
	auditHandler := handlers.NewAuditHandler()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "fitcomp API is running",
			})
		})

		login := []gin.HandlerFunc{}
		if cfg.Security.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
			login = append(login, middleware.RateLimiterMiddleware(limiter))
		}
		login = append(login, authHandler.Login)

		auth := api.Group("/auth")
		{
			auth.POST("/login", login...)
		}
	}

	admin := middleware.RequireRole(models.RoleAdministrator)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetMe)
		protected.POST("/auth/impersonate/:id", admin, authHandler.Impersonate)

		users := protected.Group("/users")
		{
			users.GET("", middleware.RequireRole(models.RoleAdministrator, models.RoleStaff), userHandler.GetUsers)
			users.GET("/:id", middleware.RequireRole(models.RoleAdministrator, models.RoleStaff), userHandler.GetUser)
			users.POST("", admin, userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.GET("/:id/stats", userHandler.GetUserStats)
		}

		competitions := protected.Group("/competitions")
		{
			competitions.GET("", competitionHandler.GetCompetitions)
			competitions.GET("/:id", competitionHandler.GetCompetition)
			competitions.POST("", competitionHandler.CreateCompetition)
			competitions.PUT("/:id", competitionHandler.UpdateCompetition)
			competitions.DELETE("/:id", competitionHandler.DeleteCompetition)
			competitions.GET("/:id/entries", entryHandler.GetEntries)
			competitions.POST("/:id/entries", entryHandler.CreateEntry)
		}

		protected.PUT("/entries/:id", entryHandler.UpdateEntry)

		protected.GET("/audit-logs", admin, auditHandler.GetAuditLogs)
	}
}
