package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/marshospital/hospice/internal/api/router"
	"github.com/marshospital/hospice/internal/assistant"
	appconfig "github.com/marshospital/hospice/internal/config"
	"github.com/marshospital/hospice/internal/http/handlers"
	"github.com/marshospital/hospice/internal/observability/metrics"
	"github.com/marshospital/hospice/internal/session"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospice coordination service",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	redisClient := buildRedisClient(ctx, cfg, logger)
	serviceMetrics := metrics.NewServiceMetrics(nil)

	// Stores hydrate synchronously before the server accepts traffic; no
	// authorization decision is made against unhydrated state.
	entityStore := store.New(redisClient, logger, serviceMetrics)
	entityStore.SetNotificationCap(cfg.NotificationLogCap)
	if err := entityStore.Hydrate(ctx); err != nil {
		logger.Error("entity store hydration failed", "error", err)
		os.Exit(1)
	}

	tokens := session.NewTokenIssuer(cfg.SessionJWTSecret)
	sessions := session.NewService(redisClient, tokens, logger)
	if err := sessions.Hydrate(ctx); err != nil {
		logger.Error("session store hydration failed", "error", err)
		os.Exit(1)
	}

	var generator assistant.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		generator = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set; assistant will answer with the fallback message")
	}
	aide := assistant.NewService(generator, entityStore, logger, serviceMetrics)

	routerCfg := &router.Config{
		Logger:             logger,
		Auth:               handlers.NewAuthHandler(entityStore, sessions, logger, serviceMetrics),
		Patients:           handlers.NewPatientsHandler(entityStore, logger),
		Orders:             handlers.NewOrdersHandler(entityStore, logger),
		Departments:        handlers.NewDepartmentHandler(entityStore, logger),
		Billing:            handlers.NewBillingHandler(entityStore, logger),
		Portal:             handlers.NewPortalHandler(entityStore, aide, logger),
		Notifications:      handlers.NewNotificationsHandler(entityStore, cfg.NotificationDisplayWindow, logger),
		Admin:              handlers.NewAdminHandler(entityStore, logger),
		Tokens:             tokens,
		SessionReady:       sessions.Ready,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildRedisClient returns a configured Redis client or nil when no address
// is set, in which case state lives only in process memory.
func buildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set; snapshots will not survive a restart")
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("redis not available", "error", err)
		os.Exit(1)
	}
	return client
}
