package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/config"
	"github.com/meyvali/backoffice/internal/repository/mongodb"
	"github.com/meyvali/backoffice/internal/repository/settings"
	"github.com/meyvali/backoffice/internal/repository/sheets"
	"github.com/meyvali/backoffice/internal/repository/workbook"
	"github.com/meyvali/backoffice/internal/scheduler"
	"github.com/meyvali/backoffice/internal/server/handlers"
	"github.com/meyvali/backoffice/internal/server/router"
	"github.com/meyvali/backoffice/internal/service/attachments"
	"github.com/meyvali/backoffice/internal/service/records"
	reportingsvc "github.com/meyvali/backoffice/internal/service/reporting"
	whatsappclient "github.com/meyvali/backoffice/pkg/clients/whatsapp"
	"github.com/meyvali/backoffice/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store := workbook.NewStore(cfg.Workbook.Path, cfg.Workbook.SerializeWrites, baseLogger.Named("repo.workbook"))
	categories := settings.NewCategoryStore(cfg.Settings.CategoriesPath, baseLogger.Named("repo.categories"))
	columns := settings.NewColumnStore(cfg.Settings.ColumnsPath, baseLogger.Named("repo.columns"))
	manager := attachments.NewManager(attachments.Options{
		Dir:       cfg.Attachments.Dir,
		BaseURL:   cfg.Server.PublicBaseURL,
		MaxWidth:  cfg.Attachments.MaxWidth,
		MaxHeight: cfg.Attachments.MaxHeight,
		Quality:   cfg.Attachments.JPEGQuality,
	}, baseLogger.Named("svc.attachments"))

	recordsSvc := records.NewService(store, manager, categories, columns, records.Sheets{
		Summary:    cfg.Workbook.SummarySheet,
		Products:   cfg.Workbook.ProductsSheet,
		Payments:   cfg.Workbook.PaymentsSheet,
		CashTotals: cfg.Workbook.CashTotalsSheet,
	}, baseLogger.Named("svc.records"))

	var reportOpts []reportingsvc.Option

	if cfg.MongoDB.URI != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		reportOpts = append(reportOpts, reportingsvc.WithArchive(mongoRepo))
	} else {
		baseLogger.Warn("mongodb uri missing, daily report archive disabled")
	}

	if cfg.Sheets.MirrorEnabled() {
		mirror, err := sheets.NewGoogleSheetMirror(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets mirror", zap.Error(err))
		}
		reportOpts = append(reportOpts, reportingsvc.WithMirror(mirror))
	} else {
		baseLogger.Warn("google sheets mirror not configured")
	}

	if cfg.WhatsApp.AccessToken != "" {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp, baseLogger.Named("client.whatsapp"))
		reportOpts = append(reportOpts, reportingsvc.WithNotifier(whatsClient, cfg.WhatsApp.ManagerID))
	} else {
		baseLogger.Warn("whatsapp token missing, daily report notifications disabled")
	}

	reportingSvc := reportingsvc.NewService(recordsSvc, baseLogger.Named("svc.reporting"), reportOpts...)

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Records:  handlers.NewRecordsHandler(recordsSvc, baseLogger.Named("handlers.records")),
		Settings: handlers.NewSettingsHandler(categories, columns, baseLogger.Named("handlers.settings")),
		Files:    handlers.NewFilesHandler(store, manager, filepath.Base(cfg.Workbook.Path), baseLogger.Named("handlers.files")),
	}, cfg.Server.AllowedOrigins, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("workbook", cfg.Workbook.Path),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
