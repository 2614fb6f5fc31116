package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasuboski/openai-gateway/internal/analytics"
	"github.com/kasuboski/openai-gateway/internal/config"
	"github.com/kasuboski/openai-gateway/internal/keystore"
	"github.com/kasuboski/openai-gateway/internal/registry"
	"github.com/kasuboski/openai-gateway/internal/server/middleware"
	v1 "github.com/kasuboski/openai-gateway/internal/server/v1"
	"github.com/kasuboski/openai-gateway/internal/server/validator"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	logger   *zap.Logger
	registry *registry.Registry
	keys     keystore.Authorizer
	ingestor analytics.Ingestor
}

func New(cfg *config.Config, logger *zap.Logger, reg *registry.Registry, keys keystore.Authorizer, ingestor analytics.Ingestor) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.InitValidator()

	engine := gin.New()

	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(logger, true))

	s := &Server{
		router:   engine,
		config:   cfg,
		logger:   logger,
		registry: reg,
		keys:     keys,
		ingestor: ingestor,
	}

	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Tracing("openai-gateway"))
	s.router.Use(middleware.ErrorHandler(s.logger))

	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	rl := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)

	group := s.router.Group("/v1")
	group.Use(middleware.Auth(s.keys))
	group.Use(rl.Middleware())
	{
		chatHandler := v1.NewChatHandler(s.registry, s.ingestor)
		group.POST("/chat/completions", chatHandler.CreateCompletion)

		modelHandler := v1.NewModelHandler(s.registry)
		group.GET("/models", modelHandler.ListProviders)
	}
}
