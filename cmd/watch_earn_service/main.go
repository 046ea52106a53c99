package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watch_earn_service/internal/api/handlers"
	"watch_earn_service/internal/api/router"
	engagement "watch_earn_service/internal/engagement/app"
	ledgerapp "watch_earn_service/internal/ledger/app"
	"watch_earn_service/internal/ledger/repository"
	"watch_earn_service/pkg/config"
	"watch_earn_service/pkg/database"
	"watch_earn_service/pkg/logger"
	testtool "watch_earn_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.WatchEarn, config.EnvConfig.WatchEarnLogPath)
	defer logger.Log.Sync()

	cfg, err := config.LoadConfig[config.WatchEarn](config.EnvConfig.WatchEarn, config.EnvConfig.WatchEarnYAMLPath)
	if err != nil {
		logger.Log.Fatal("load config failed", zap.Error(err))
	}
	if cfg.Port == "" {
		cfg.Port = config.EnvConfig.WatchEarnPort
	}

	ctx := context.Background()

	storage, err := database.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Fatal("open storage failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer storage.Close()

	publisher, err := database.OpenPublisher(cfg.Events)
	if err != nil {
		logger.Log.Fatal("open event publisher failed", zap.String("driver", cfg.Events.Driver), zap.Error(err))
	}
	defer publisher.Close()

	store, err := repository.NewLedgerStore(ctx, storage)
	if err != nil {
		logger.Log.Fatal("load ledger failed", zap.Error(err))
	}

	events := ledgerapp.NewEventSink(publisher)
	ledgerUC := ledgerapp.NewLedgerUseCase(store, events)
	sessions := engagement.NewSessions(store, events, time.Duration(cfg.TickSeconds)*time.Second)
	defer sessions.Release()

	testtool.StartPprof(cfg.PprofAddr)

	// 创建 Fiber 应用
	r := fiber.New()
	// 添加日志中间件
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.WatchEarnLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	router.RegisterRoutes(r, router.Handlers{
		Account: handlers.NewAccountHandler(ledgerUC, sessions),
		Video:   handlers.NewVideoHandler(ledgerUC, store),
		Watch:   handlers.NewWatchHandler(sessions),
	}, router.ActiveAccount(store))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("shutting down")
		if err := r.Shutdown(); err != nil {
			logger.Log.Error("server shutdown", zap.Error(err))
		}
	}()

	logger.Log.Info("watch earn service listening",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("events", cfg.Events.Driver),
	)
	if err := r.Listen(cfg.IP + ":" + cfg.Port); err != nil {
		logger.Log.Error("Server failed to start", zap.Error(err))
	}
}
