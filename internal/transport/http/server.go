package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sro-assistant/internal/ai"
	appsvc "sro-assistant/internal/app"
	"sro-assistant/internal/bootstrap"
	"sro-assistant/internal/platform/rabbitmq"
	"sro-assistant/internal/quota"
	"sro-assistant/internal/registry"
	"sro-assistant/internal/repository"
	"sro-assistant/internal/transport/http/handler"
	"sro-assistant/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app.MySQL, app.Redis, app.MQConn, app.Index, app.StartedAt)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userRepo := repository.NewUserRepository(app.MySQL)
	quotaTracker := quota.NewTracker(app.Redis, cfg.Quota.DailyLimit, app.Log)
	publisher := rabbitmq.NewAnswerLogPublisher(app.MQConn, cfg.RabbitMQ.AnswerLogQueue)
	registryClient := registry.NewClient(
		cfg.Registry.BaseURL,
		time.Duration(cfg.Registry.TimeoutSeconds)*time.Second,
		app.Log,
	)

	answerService := appsvc.NewAnswerService(
		userRepo,
		quotaTracker,
		app.Index,
		newGenerator(app),
		publisher,
		cfg.Documents.TopK,
		app.Log,
	)
	userService := appsvc.NewUserService(userRepo, registryClient, app.Log)
	authService := appsvc.NewAuthService(
		cfg.Auth.ClientID,
		cfg.Auth.ClientSecretHash,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)

	answerLogRepo := repository.NewAnswerLogRepository(app.MySQL)
	askHandler := handler.NewAskHandler(answerService, app.Log)
	historyHandler := handler.NewHistoryHandler(answerLogRepo, app.Log)
	searchHandler := handler.NewSearchHandler(app.Index, cfg.Documents.TopK, app.Log)
	userHandler := handler.NewUserHandler(userService, app.Log)
	authHandler := handler.NewAuthHandler(authService, app.Log)
	adminHandler := handler.NewAdminHandler(app.Index, app.Log)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/token", authHandler.IssueToken)

	protected := v1.Group("")
	protected.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	protected.POST("/ask", askHandler.Ask)
	protected.GET("/search", searchHandler.Search)
	protected.POST("/users/verify-inn", userHandler.VerifyINN)
	protected.GET("/users/:id", userHandler.GetByID)
	protected.GET("/users/:id/history", historyHandler.List)
	protected.POST("/admin/reindex", adminHandler.Reindex)

	return router
}

// newGenerator picks the live LLM client or the canned echo used in
// staging environments without an API key.
func newGenerator(app *bootstrap.App) appsvc.Generator {
	cfg := app.Config.LLM
	if cfg.Mode == "canned" {
		return ai.CannedGenerator{}
	}
	return ai.NewGenerator(
		ai.ChatConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		},
		time.Duration(cfg.TimeoutSeconds)*time.Second,
		app.Log,
	)
}
