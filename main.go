package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"medical-app/config"
	"medical-app/controllers"
	"medical-app/logger"
	"medical-app/models"
	"medical-app/relay"
	"medical-app/routes"
	"medical-app/services"
	"medical-app/workers"
)

func main() {
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Log.Sync() }()

	// 初始化数据库
	if err := config.InitDB(cfg.DatabaseDSN); err != nil {
		logger.Log.Fatal("database init failed", zap.Error(err))
	}
	// 自动迁移
	models.Migrate()

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mailer := services.NewMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	push := services.NewPushClient(cfg.FCMEndpoint, cfg.FCMServerKey)

	notifier, err := workers.NewNotifier(cfg.RedisURL, config.DB, push)
	if err != nil {
		logger.Log.Fatal("notifier init failed", zap.Error(err))
	}
	defer func() { _ = notifier.Close() }()

	store := services.NewConversationStore(config.DB)

	// Relay core: registry + dispatcher + lifecycle, owned here and passed
	// down, never reached through globals.
	registry := relay.NewRegistry()
	dispatcher := relay.NewDispatcher(store, registry, cfg.DispatchTimeout, logger.Log)
	lifecycle := relay.NewLifecycle(registry, logger.Log)

	ws := services.NewWSService(lifecycle, dispatcher, notifier, tokens, cfg.PingInterval, cfg.PongTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RedisURL != "" {
		go func() {
			if err := workers.RunWorker(ctx, cfg.RedisURL, notifier); err != nil {
				logger.Log.Error("notification worker stopped", zap.Error(err))
			}
		}()
	}

	r := routes.RegisterRoutes(routes.Deps{
		Tokens:        tokens,
		WS:            ws,
		Auth:          controllers.NewAuthController(tokens, mailer, cfg.VerifyCodeTTL),
		Conversations: controllers.NewConversationController(store),
		Notifications: controllers.NewNotificationController(push),
	})

	logger.Log.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("server failed to start", zap.Error(err))
	}
}
