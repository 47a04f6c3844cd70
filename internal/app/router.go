package app

import (
	"knowledgebot/docs"
	"knowledgebot/internal/config"
	"knowledgebot/internal/middleware"
	"knowledgebot/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}

	// 2. 机器人网关路由，共享令牌认证
	gateway := router.Group("/gateway")
	gateway.Use(middleware.GatewayMiddleware(cfg))
	{
		gateway.POST("/users/sync", c.user.SyncUser)

		quiz := gateway.Group("/quiz")
		{
			quiz.GET("/tests", c.quiz.ListTests)
			quiz.POST("/start", c.quiz.StartQuiz)
			quiz.POST("/answer", c.quiz.SubmitAnswer)
			quiz.POST("/cancel", c.quiz.CancelQuiz)
			quiz.GET("/history", c.quiz.History)
		}

		catalog := gateway.Group("/catalog")
		{
			catalog.GET("/categories", c.catalog.Categories)
			catalog.GET("/products", c.catalog.Products)
			catalog.GET("/products/:id", c.catalog.Product)
		}
	}

	// 3. 管理端路由，JWT 认证
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware(), middleware.ActivityMiddleware(repos.user))
	{
		admin.GET("/tests/:id/stats", c.quiz.TestStats)
		admin.GET("/tests/:id/attempts", c.quiz.TestAttempts)
	}
}
