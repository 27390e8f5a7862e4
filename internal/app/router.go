package app

import (
	"caregiver_support_backend/docs"
	"caregiver_support_backend/internal/config"
	"caregiver_support_backend/internal/middleware"
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 照护者路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/users/me", c.user.GetProfile)
		authGroup.PUT("/users/me", c.user.UpdateProfile)
		authGroup.PUT("/users/me/language", c.user.SetLanguage)

		program := authGroup.Group("/program")
		{
			program.GET("/overview", c.program.GetOverview)
			program.GET("/days/:day", c.program.GetDay)
			program.POST("/days/:day/tasks/:taskId/response", c.program.SubmitTaskResponse)
			program.POST("/days/:day/assessment", c.program.SubmitAssessment)
			program.GET("/days/:day/reminders", c.program.GetReminders)
		}
	}

	// 管理员路由
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.ListUsers)

		admin.GET("/structures", c.content.ListStructures)
		admin.PUT("/structures", c.content.UpsertStructure)
		admin.GET("/structures/:day", c.content.GetStructure)
		admin.DELETE("/structures/:day", c.content.DeleteStructure)

		admin.PUT("/translations", c.content.UpsertTranslation)
		admin.GET("/translations/:day", c.content.ListTranslations)
		admin.DELETE("/translations/:day/:language", c.content.DeleteTranslation)

		admin.GET("/unlock-config", c.content.GetWaitConfig)
		admin.PUT("/unlock-config", c.content.UpdateWaitConfig)

		admin.GET("/programs", c.content.ListPrograms)
		admin.POST("/programs/:userId/days/:day/unlock", c.content.UnlockDay)
		admin.PUT("/programs/:userId/wait-overrides", c.content.SetWaitOverrides)

		admin.POST("/media", c.media.Upload)
		admin.GET("/media", c.media.List)
		admin.DELETE("/media/:id", c.media.Delete)
	}
}
