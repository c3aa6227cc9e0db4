package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/acoopRD/poc-finance/internal/api"
	"github.com/acoopRD/poc-finance/internal/cache"
	"github.com/acoopRD/poc-finance/internal/config"
	"github.com/acoopRD/poc-finance/internal/database"
	"github.com/acoopRD/poc-finance/internal/ledger"
	"github.com/acoopRD/poc-finance/internal/services"
	"github.com/acoopRD/poc-finance/internal/universe"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redis.Close()

	ctx := context.Background()

	store := ledger.NewPostgresStore(db.Pool)
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	book := ledger.New(store, logger)

	reports := cache.NewRedisReportCache(redis.Client, cfg.MarketData.ReportTTLDuration())

	engine := services.NewSignalEngine(logger)
	analyzer := services.NewMarketAnalysisService(logger, engine, reports,
		cfg.MarketData.DepthLevels, cfg.MarketData.Concurrency)

	notifier := services.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	trader := services.NewTrader(book, nil, notifier, cfg.Trading, logger)

	filter := universe.NewFilter(
		universe.WithTokens(cfg.Universe.StableTokens, cfg.Universe.QuoteCurrencies),
		universe.WithLimits(cfg.Universe.StableLimit, cfg.Universe.AltLimit),
	)

	// Market data and universe providers plug in behind pkg/interfaces; the
	// pipeline only runs when both are wired. The HTTP surface serves cached
	// reports and the ledger either way.
	pipeline := services.NewPipeline(nil, nil, filter, analyzer, trader, notifier,
		cfg.MarketData, logger)
	if err := pipeline.Start(); err != nil {
		logger.WithError(err).Warn("Analysis pipeline not started")
	}

	router := gin.Default()
	api.SetupRoutes(router, api.Deps{
		DB:       db,
		Redis:    redis,
		Reports:  reports,
		Ledger:   book,
		Analyzer: analyzer,
		Filter:   filter,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	pipeline.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
