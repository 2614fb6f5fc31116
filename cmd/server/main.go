package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kasuboski/openai-gateway/internal/aigateway"
	"github.com/kasuboski/openai-gateway/internal/analytics"
	"github.com/kasuboski/openai-gateway/internal/config"
	"github.com/kasuboski/openai-gateway/internal/configstore"
	"github.com/kasuboski/openai-gateway/internal/keystore"
	"github.com/kasuboski/openai-gateway/internal/platform/logger"
	"github.com/kasuboski/openai-gateway/internal/platform/otel"
	"github.com/kasuboski/openai-gateway/internal/registry"
	"github.com/kasuboski/openai-gateway/internal/secrets"
	"github.com/kasuboski/openai-gateway/internal/server"
	"github.com/kasuboski/openai-gateway/internal/store/sqlite"
	"github.com/kasuboski/openai-gateway/internal/version"
)

func main() {
	logger.Initialize(logger.DefaultConfig())
	defer logger.Sync()
	log := logger.Get()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	go version.CheckForUpdates(log)

	shutdownTracer, err := otel.InitTracer("openai-gateway", log, os.Stdout)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// the registry serves a stale snapshot if one exists; without redis
		// at startup there is nothing to serve, so requests will 503 until
		// the store comes back
		log.Warn("redis unreachable at startup", zap.Error(err))
	}
	cancel()

	secretSource := secrets.NewEnv()

	gatewayToken, ok := secretSource.Get(cfg.Gateway.TokenSecretName)
	if !ok {
		log.Warn("gateway token secret not bound, outbound calls will be unauthenticated",
			zap.String("secret_name", cfg.Gateway.TokenSecretName))
	}

	resolver, err := aigateway.NewGatewayResolver(cfg.Gateway.BaseURL, gatewayToken)
	if err != nil {
		log.Fatal("failed to configure endpoint resolver", zap.Error(err))
	}

	reg := registry.New(
		configstore.NewRedisStore(rdb, cfg.Registry.KeyPrefix),
		secretSource,
		resolver,
		cfg.Registry.TTL,
		log,
	)

	var keys keystore.Authorizer = keystore.NewRedisKeystore(rdb, cfg.Auth.KeySetName, log)
	if len(cfg.Auth.StaticKeys) > 0 {
		keys = keystore.Chain{keystore.NewStatic(cfg.Auth.StaticKeys), keys}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ingestor analytics.Ingestor = analytics.Nop{}
	if cfg.Analytics.Enabled {
		repo, err := sqlite.NewSQLiteStorage(cfg.Analytics.DSN)
		if err != nil {
			log.Fatal("failed to open analytics store", zap.Error(err))
		}
		defer func() { _ = repo.Close() }()

		ing := analytics.NewIngestor(log, repo)
		ing.Start(ctx)
		ingestor = ing
	}

	srv := server.New(cfg, log, reg, keys, ingestor)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("starting gateway", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
}
