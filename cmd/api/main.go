package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restroom-cleanliness-api/config"
	"restroom-cleanliness-api/handlers"
	"restroom-cleanliness-api/logging"
	"restroom-cleanliness-api/scoring"
	"restroom-cleanliness-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	table, err := scoring.LoadClassTableFile(cfg.Scoring.ClassesFile)
	if err != nil {
		logger.Fatal("failed to load class table", zap.String("path", cfg.Scoring.ClassesFile), zap.Error(err))
	}
	logger.Info("class table loaded", zap.Int("classes", table.Len()), zap.String("path", cfg.Scoring.ClassesFile))

	detector := services.NewHTTPDetector(cfg.Detector)
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := detector.CheckHealth(checkCtx); err != nil {
		logger.Warn("detector not available", zap.String("url", cfg.Detector.URL), zap.Error(err))
	}
	cancel()

	// Optional event sinks
	var publishers []services.Publisher
	var feed handlers.ScoreFeed
	if cfg.Redis.URL != "" {
		redisPub, err := services.NewRedisPublisher(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, score events disabled for redis", zap.Error(err))
		} else {
			publishers = append(publishers, redisPub)
			feed = redisPub
			logger.Info("redis connected", zap.String("channel", redisPub.Channel()))
		}
	}
	if cfg.MQTT.URL != "" {
		mqttPub, err := services.NewMQTTPublisher(cfg.MQTT, logger)
		if err != nil {
			logger.Warn("mqtt unavailable, score events disabled for mqtt", zap.Error(err))
		} else {
			publishers = append(publishers, mqttPub)
		}
	}
	events := services.NewBroadcaster(logger, publishers...)
	defer events.Close()

	gin.SetMode(cfg.Server.GinMode)
	router := handlers.NewRouter(handlers.RouterOptions{
		Predict:   handlers.NewPredictHandler(detector, table, cfg.Scoring.MinConfidence, events, logger),
		Health:    handlers.NewHealthHandler(detector),
		Feed:      feed,
		CORS:      cfg.CORS,
		MaxUpload: cfg.Server.MaxUploadBytes(),
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", server.Addr),
			zap.String("detector", cfg.Detector.URL),
			zap.Int("event_sinks", events.Len()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
