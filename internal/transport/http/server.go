package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kpbu-assistant/internal/bootstrap"
	mysqlClient "kpbu-assistant/internal/platform/mysql"
	rabbitmqClient "kpbu-assistant/internal/platform/rabbitmq"
	redisClient "kpbu-assistant/internal/platform/redis"
	"kpbu-assistant/internal/transport/http/handler"
	"kpbu-assistant/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.Metrics())

	checks := map[string]handler.DependencyCheck{
		"mysql":    func(ctx context.Context) error { return mysqlClient.Ping(ctx, app.MySQL) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx, app.Redis) },
		"rabbitmq": func(ctx context.Context) error { return rabbitmqClient.Ping(ctx, app.MQConn) },
	}
	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, checks)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chatHandler := handler.NewChatHandler(app.AnswerService, app.History, app.Config.ProvidersConfigured())
	recommendationHandler := handler.NewRecommendationHandler(app.RecommendService)
	documentHandler := handler.NewDocumentHandler(app.IngestService, app.IngestPublisher)

	v1 := router.Group("/api/v1")

	chatGroup := v1.Group("/chat")
	chatGroup.POST("", chatHandler.Ask)
	chatGroup.GET("/health", chatHandler.Health)
	chatGroup.GET("/history", chatHandler.History)

	v1.POST("/recommendations", recommendationHandler.Recommend)
	v1.GET("/recommendations", recommendationHandler.RecommendByQuery)
	v1.GET("/projects", recommendationHandler.ListProjects)

	documentGroup := v1.Group("/documents")
	documentGroup.POST("", documentHandler.Create)
	documentGroup.POST("/pdf", documentHandler.UploadPDF)
	documentGroup.GET("", documentHandler.List)
	documentGroup.DELETE("/:id", documentHandler.Delete)

	return router
}
