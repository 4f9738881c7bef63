package app

import (
	"afri_portal_backend/internal/config"
	"afri_portal_backend/internal/middleware"
	"afri_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.POST("/logout", c.auth.Logout)

		authGroup.GET("/curriculum", c.curriculum.GetCurriculum)
		authGroup.GET("/students", c.students.GetStudents)
		authGroup.GET("/dashboard", c.dashboard.GetDashboard)

		authGroup.POST("/progress/toggle", c.progress.Toggle)

		classes := authGroup.Group("/classes/:week/:session")
		{
			classes.GET("/transcript", c.session.GetTranscript)
			classes.POST("/summary", c.session.GenerateSummary)
			classes.POST("/quiz", c.session.GenerateQuiz)
		}

		authGroup.POST("/tutor/chat", c.tutor.Chat)
	}
}
