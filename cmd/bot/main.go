package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agrodose/fertilizer-bot/internal/adapter/export"
	httpadapter "github.com/agrodose/fertilizer-bot/internal/adapter/http"
	kafkaadapter "github.com/agrodose/fertilizer-bot/internal/adapter/kafka"
	"github.com/agrodose/fertilizer-bot/internal/adapter/telegram"
	"github.com/agrodose/fertilizer-bot/internal/adapter/weather"
	"github.com/agrodose/fertilizer-bot/internal/config"
	"github.com/agrodose/fertilizer-bot/internal/domain"
	"github.com/agrodose/fertilizer-bot/internal/observability"
	"github.com/agrodose/fertilizer-bot/internal/payment"
	"github.com/agrodose/fertilizer-bot/internal/refdata"
	"github.com/agrodose/fertilizer-bot/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	catalog, err := refdata.Load()
	if err != nil {
		logger.Error("failed to load fertilizer catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "version", catalog.Version, "crops", len(catalog.Crops))

	client := telegram.NewClient(cfg.TelegramToken, cfg.TelegramAPIURL, cfg.PollTimeout, logger)

	// Weather lookups are feature-flagged via WEATHER_ENABLED / WEATHER_API_KEY.
	var provider domain.WeatherProvider
	if cfg.WeatherEnabled {
		weatherClient := weather.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, logger, metrics)
		provider = weather.NewCachedProvider(weatherClient, cfg.WeatherCacheSize, metrics)
		metrics.WeatherEnabled.Set(1)
		logger.Info("weather lookups enabled", "cache_size", cfg.WeatherCacheSize, "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("weather lookups disabled")
	}

	// Event publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher telegram.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("recommendation publishing enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("recommendation publishing disabled")
	}

	bot := telegram.NewBot(
		client,
		domain.NewCalculator(catalog),
		session.NewStore(catalog),
		payment.NewGate(cfg.FreeCalcLimit),
		export.NewExporter(client, logger),
		provider,
		publisher,
		cfg.PollTimeout,
		logger,
		metrics,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, bot, catalog, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the conversation loop.
	go func() {
		if err := bot.Run(ctx); err != nil {
			logger.Error("bot error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
