package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-report/internal/chart"
	"github.com/stemsi/exstem-report/internal/config"
	"github.com/stemsi/exstem-report/internal/database"
	"github.com/stemsi/exstem-report/internal/dataset"
	"github.com/stemsi/exstem-report/internal/handler"
	"github.com/stemsi/exstem-report/internal/logger"
	"github.com/stemsi/exstem-report/internal/middleware"
	"github.com/stemsi/exstem-report/internal/repository"
	"github.com/stemsi/exstem-report/internal/router"
	"github.com/stemsi/exstem-report/internal/service"
	"github.com/stemsi/exstem-report/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("data", cfg.DataPath).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExStem Report")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (optional summary cache) ─────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	var summaryCache service.SummaryCache
	if rdb != nil {
		defer rdb.Close()
		summaryCache = repository.NewSummaryCacheRepository(rdb, cfg.SummaryCacheTTL)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	datasets := dataset.NewFileCache(dataset.LoadOptions{Delimiter: cfg.DataDelimiter}, log)
	reportService := service.NewReportService(datasets, cfg.DataPath, summaryCache, log)

	// ─── Load Dataset ─────────────────────────────────────────────────
	// The dashboard is useless without data, so a bad source stops start-up.
	stats, err := reportService.Stats(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load student performance data")
	}
	log.Info().
		Int("records", stats.Records).
		Int("dropped", stats.Dropped).
		Msg("Dataset ready")

	// ─── Initialize Handlers ──────────────────────────────────────────
	renderer := chart.NewRenderer(cfg.ChartWidth, cfg.ChartHeight)
	handlers := &router.Handlers{
		Report: handler.NewReportHandler(reportService, renderer, log),
		WS:     handler.NewWSHandler(reportService, log, cfg.AllowedOrigins),
	}

	var chartLimiter *middleware.RateLimiter
	if cfg.ChartRateLimit > 0 {
		chartLimiter = middleware.NewRateLimiter(ctx, cfg.ChartRateLimit, time.Minute)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, chartLimiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
