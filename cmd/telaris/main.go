package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/telaris-erp/telaris-reports/internal/app"
	"github.com/telaris-erp/telaris-reports/internal/platform/cache"
	"github.com/telaris-erp/telaris-reports/internal/platform/db"
	"github.com/telaris-erp/telaris-reports/internal/portfolio"
	portfoliohttp "github.com/telaris-erp/telaris-reports/internal/portfolio/http"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var fetcher portfolio.Fetcher = portfolio.NewRepository(pool)
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, snapshot caching disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		snapshotCache := portfolio.NewCache(redisClient, cfg.SnapshotCacheTTL)
		fetcher = portfolio.NewCachedFetcher(fetcher, snapshotCache, logger)
	}

	engine := portfolio.NewEngine(fetcher, logger)
	// Initial load failure is not fatal: the engine serves an empty baseline
	// until the next refresh succeeds.
	if err := engine.Refresh(ctx); err != nil {
		logger.Error("initial baseline load", slog.Any("error", err))
	}

	handler := portfoliohttp.NewHandler(logger, engine)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		PortfolioHandler: handler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
