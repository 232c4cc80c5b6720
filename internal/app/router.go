package app

import (
	"lingo_flow_backend/docs"
	"lingo_flow_backend/internal/config"
	"lingo_flow_backend/internal/middleware"
	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/auth/logout", c.auth.Logout)

		// 课程目录对游客开放
		public.GET("/courses", c.course.List)
		public.GET("/courses/:id", c.course.Get)
		public.GET("/courses/:id/lessons", c.course.Lessons)
	}

	// 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		learn := authGroup.Group("/learn")
		{
			learn.GET("/lessons/:id", c.learn.GetLesson)
			learn.POST("/lessons/:id/start", c.learn.StartLesson)
			learn.POST("/lessons/:id/exercises/:exId/submit", c.learn.SubmitAnswer)
			learn.GET("/progress/courses/:courseId", c.learn.CourseProgress)
		}

		user := authGroup.Group("/user")
		{
			user.PUT("/profile", c.user.UpdateProfile)
			user.PUT("/password", c.user.ChangePassword)
			user.POST("/avatar", c.user.UploadAvatar)
			user.GET("/gamification", c.user.Gamification)
			user.GET("/leaderboard", c.user.Leaderboard)
		}
	}

	// 管理端路由
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.POST("/courses", c.course.Create)
		admin.PUT("/courses/:id", c.course.Update)
		admin.DELETE("/courses/:id", c.course.Delete)
		admin.POST("/courses/:id/cover", c.course.UploadCover)
		admin.POST("/courses/:id/lessons", c.lesson.Create)

		admin.GET("/lessons/:id", c.lesson.Get)
		admin.PUT("/lessons/:id", c.lesson.Update)
		admin.DELETE("/lessons/:id", c.lesson.Delete)
		admin.POST("/lessons/:id/exercises/:exId/audio", c.lesson.UploadAudio)
	}
}
