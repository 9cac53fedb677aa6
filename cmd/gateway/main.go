package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zapan/eventbus/internal/api"
	"github.com/zapan/eventbus/internal/application/factories/infrastructure"
	"github.com/zapan/eventbus/internal/config"
	"github.com/zapan/eventbus/internal/events"
	"github.com/zapan/eventbus/internal/infrastructure/rabbitmq"
	"github.com/zapan/eventbus/internal/registry"
	"github.com/zapan/eventbus/internal/usecase"
)

func main() {
	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	conn, err := infraFactory.Broker(ctx)
	if err != nil {
		logger.Error("failed to prepare broker connection", "error", err)
		os.Exit(1)
	}
	publisher := rabbitmq.NewPublisher(conn)

	// Event registry: load from cache or build from the declared catalog
	filter := registry.NewFilter(cfg.Registry.WhiteList, cfg.Registry.BlackList)
	cache := registry.NewCache(cfg.Registry.CachePath)
	reg, err := registry.New(events.Source(), filter, cache)
	if err != nil {
		logger.Error("failed to build event registry", "error", err)
		os.Exit(1)
	}
	logger.Info("event registry ready", "entries", len(reg.Table()))

	publishUC := usecase.NewPublishEvent(reg, publisher, cfg.Registry.EventBusExchangeName)

	var redisClient *redis.Client
	if provider := infraFactory.Redis(); provider != nil {
		redisClient = provider.Client()
	}

	handlers := api.NewHandlers(publishUC, reg)
	apiHandler := api.NewRouter(handlers, redisClient)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: apiHandler,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exiting")
}
