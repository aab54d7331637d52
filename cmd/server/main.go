package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/api"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/database"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/logger"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/scheduler"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/sheets"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLog := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(appLog)
	appLog.Info().Str("version", version.Version).Msg("Starting customer dashboard")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, logger.Component(appLog, "database")); err != nil {
		appLog.Fatal().Err(err).Msg("Failed to migrate database")
	}
	appLog.Info().
		Str("path", cfg.Database.Path).
		Bool("encrypted", len(cfg.Database.SnapshotKeys) > 0).
		Msg("Connected to database")

	// Create source and repositories
	source := sheets.NewExportClient(sheets.Config{
		BaseURL:           cfg.Sheets.BaseURL,
		SheetID:           cfg.Sheets.SheetID,
		PositionGID:       cfg.Sheets.PositionGID,
		AccrualGID:        cfg.Sheets.AccrualGID,
		PositionHeaderRow: cfg.Sheets.PositionHeaderRow,
		AccrualHeaderRow:  cfg.Sheets.AccrualHeaderRow,
		Timeout:           cfg.Sheets.FetchTimeout,
	})
	snapshotRepo := repository.NewSnapshotRepository(db, cfg.Database.SnapshotKeys)

	// Create services
	opts := report.Options{
		MinNAV:              cfg.Report.MinNAV,
		PurchasePolicy:      cfg.Report.PurchasePolicy,
		InterestTotalRow:    cfg.Report.InterestTotalRow,
		InterestSortByTotal: cfg.Report.InterestSortByTotal,
	}
	if err := opts.Validate(); err != nil {
		appLog.Fatal().Err(err).Msg("Invalid report options")
	}
	systemService := service.NewSystemService(db)
	dashboardService := service.NewDashboardService(source, snapshotRepo, opts, cfg.Refresh.Retention, appLog)

	// Both exports are fetched in parallel, each bounded by FetchTimeout.
	refreshTimeout := cfg.Sheets.FetchTimeout + 30*time.Second
	refreshJob := scheduler.NewRefreshJob(ctx, dashboardService, refreshTimeout)

	// The last stored snapshot keeps serving when the initial refresh fails.
	sched := scheduler.New(appLog)
	if err := sched.RunNow(refreshJob); err != nil {
		appLog.Warn().Err(err).Msg("Initial dashboard refresh failed")
	}

	if cfg.Refresh.Schedule != "" {
		if err := sched.AddJob(cfg.Refresh.Schedule, refreshJob); err != nil {
			appLog.Fatal().Err(err).Msg("Failed to schedule dashboard refresh")
		}
		sched.Start()
		defer sched.Stop()
	} else {
		appLog.Info().Msg("Periodic refresh disabled")
	}

	// Create router
	router := api.NewRouter(systemService, dashboardService, cfg, appLog)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: refreshTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLog.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()
	stop()

	appLog.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	appLog.Info().Msg("Server exited")
}
