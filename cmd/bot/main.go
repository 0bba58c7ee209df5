package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"ozon-order-bot/internal/core/cache"
	"ozon-order-bot/internal/core/config"
	"ozon-order-bot/internal/core/logger"
	"ozon-order-bot/internal/core/server"
	"ozon-order-bot/internal/core/storage"
	bothandler "ozon-order-bot/internal/features/bot/handler"
	monitorhandler "ozon-order-bot/internal/features/monitor/handler"
	monitorservice "ozon-order-bot/internal/features/monitor/service"
	notifyadapters "ozon-order-bot/internal/features/notify/adapters"
	orderadapters "ozon-order-bot/internal/features/orders/adapters"
	orderservice "ozon-order-bot/internal/features/orders/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the Ozon adapter and verify credentials
	ozon := orderadapters.NewOzonAdapter(cfg.Ozon)
	if err := ozon.HealthCheck(ctx); err != nil {
		l.Fatal("Ozon Seller API health check failed", zap.Error(err))
	}
	l.Info("Ozon Seller API connection verified")

	// Open the embedded order store
	db, err := storage.NewSQLite(cfg.DBPath)
	if err != nil {
		l.Fatal("Failed to open order store", zap.Error(err))
	}
	defer db.Close()

	store, err := orderadapters.NewGormOrderStore(db.DB)
	if err != nil {
		l.Fatal("Failed to initialize order store", zap.Error(err))
	}

	// Posting-detail cache: Redis when configured, otherwise a no-op
	var detailCache cache.Cache = cache.NewNoopCache()
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			l.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			l.Warn("Redis unreachable, details will not be cached", zap.Error(err))
		} else {
			detailCache = redisCache
			l.Info("Posting detail cache enabled")
		}
	}

	// Telegram client shared by the notifier and the command handler
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		l.Fatal("Failed to connect to Telegram", zap.Error(err))
	}
	l.Info("Telegram connection verified", zap.String("bot", botAPI.Self.UserName))

	notifier := notifyadapters.NewTelegramNotifier(botAPI, cfg.Telegram.AdminChatID)
	orderSvc := orderservice.NewOrderService(ozon, detailCache)
	monitor := monitorservice.NewMonitor(ozon, store, notifier, cfg.Monitor)

	// Monitoring starts automatically; /monitor stop pauses it
	if err := monitor.Start(context.Background()); err != nil {
		l.Fatal("Failed to start monitoring", zap.Error(err))
	}

	// Optional local status server
	if cfg.StatusPort > 0 {
		srv := server.New(cfg.StatusPort)
		statusHandler := monitorhandler.NewStatusHandler(monitor, ozon, db)
		srv.App.Get("/healthz", statusHandler.Healthz)
		srv.App.Get("/status", statusHandler.Status)

		go func() {
			if err := srv.Run(); err != nil {
				l.Error("Status server failed", zap.Error(err))
			}
		}()
		defer srv.Shutdown()
	}

	// Blocks until the process receives a shutdown signal
	botHandler := bothandler.NewBotHandler(botAPI, orderSvc, monitor, cfg.Telegram.AdminChatID)
	botHandler.Run(ctx)

	if err := monitor.Stop(); err != nil && !errors.Is(err, monitorservice.ErrNotRunning) {
		l.Error("Failed to stop monitoring", zap.Error(err))
	}
	l.Info("Shutdown complete")
}
