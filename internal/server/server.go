package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botconsole/internal/channels"
	"botconsole/internal/config"
	"botconsole/internal/crypto"
	"botconsole/internal/handler"
	"botconsole/internal/middleware"
	"botconsole/internal/nlp"
	"botconsole/internal/pipeline"
	"botconsole/internal/realtime"
	"botconsole/internal/responder"
	"botconsole/internal/service"
	"botconsole/internal/store"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// Deps carries the long-lived components the routes are built from.
type Deps struct {
	Config     *config.Config
	Store      store.Store
	Registry   *channels.Registry
	Pipeline   *pipeline.Pipeline
	Hub        *realtime.Hub
	Classifier *nlp.Classifier
	Selector   *responder.Selector
	Cipher     *crypto.Cipher
}

func NewServer(deps Deps, logger *zap.Logger) *Server {
	if !deps.Config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	s := &Server{
		router: router,
		logger: logger,
	}
	s.setupRoutes(deps)
	return s
}

func (s *Server) setupRoutes(deps Deps) {
	cfg := deps.Config

	authService := service.NewAuthService(deps.Store, cfg.Auth.JWTSecret, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)
	webhookHandler := handler.NewWebhookHandler(deps.Registry, deps.Pipeline, s.logger)
	wsHandler := handler.NewWSHandler(deps.Hub, cfg.Auth.JWTSecret, s.logger)

	platformHandler := handler.NewPlatformHandler(deps.Store, deps.Cipher, s.logger)
	conversationHandler := handler.NewConversationHandler(deps.Store, s.logger)
	templateHandler := handler.NewTemplateHandler(deps.Store, s.logger)
	botConfigHandler := handler.NewBotConfigHandler(deps.Store, s.logger)
	modelHandler := handler.NewModelHandler(deps.Store, deps.Classifier, deps.Hub, s.logger)
	logHandler := handler.NewLogHandler(deps.Store, s.logger)
	statsHandler := handler.NewStatsHandler(deps.Store, cfg.Realtime.StatsWindow, s.logger)
	botTestHandler := handler.NewBotTestHandler(deps.Store, deps.Selector, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Platform callbacks cannot carry our JWT; webhooks stay open.
	webhooks := s.router.Group("/webhooks")
	webhooks.GET("/:channel", webhookHandler.Verify)
	webhooks.POST("/:channel", webhookHandler.Receive)

	// The socket authenticates itself via ?token=.
	s.router.GET("/ws", wsHandler.Serve)

	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Authenticated routes
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret, s.logger))
	{
		authRequired.GET("/platforms", platformHandler.List)
		authRequired.GET("/platforms/:id", platformHandler.Get)
		authRequired.POST("/platforms", platformHandler.Create)
		authRequired.PUT("/platforms/:id", platformHandler.Update)

		authRequired.GET("/conversations", conversationHandler.List)
		authRequired.GET("/conversations/:id", conversationHandler.Get)
		authRequired.PUT("/conversations/:id", conversationHandler.Update)
		authRequired.GET("/conversations/:id/messages", conversationHandler.Messages)
		authRequired.GET("/messages", conversationHandler.RecentMessages)

		authRequired.GET("/templates", templateHandler.List)
		authRequired.GET("/templates/:id", templateHandler.Get)
		authRequired.POST("/templates", templateHandler.Create)
		authRequired.PUT("/templates/:id", templateHandler.Update)
		authRequired.DELETE("/templates/:id", templateHandler.Delete)

		authRequired.GET("/bot/config", botConfigHandler.Get)
		authRequired.PUT("/bot/config", botConfigHandler.Update)
		authRequired.POST("/bot/test", botTestHandler.Test)

		authRequired.GET("/models", modelHandler.List)
		authRequired.GET("/models/current", modelHandler.Current)
		authRequired.POST("/models/train", modelHandler.Train)

		authRequired.GET("/logs", logHandler.Recent)
		authRequired.GET("/stats", statsHandler.Get)
	}
}

func (s *Server) Run(addr string) error {
	s.logger.Info("Server starting", zap.String("addr", addr))
	return s.router.Run(addr)
}
