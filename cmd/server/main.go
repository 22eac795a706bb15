package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/config"
	"github.com/mamadbah2/stockdesk/internal/repository/mongodb"
	"github.com/mamadbah2/stockdesk/internal/repository/sheets"
	"github.com/mamadbah2/stockdesk/internal/scheduler"
	"github.com/mamadbah2/stockdesk/internal/server/handlers"
	"github.com/mamadbah2/stockdesk/internal/server/router"
	entrysvc "github.com/mamadbah2/stockdesk/internal/service/entry"
	"github.com/mamadbah2/stockdesk/internal/service/outstock"
	reportingsvc "github.com/mamadbah2/stockdesk/internal/service/reporting"
	"github.com/mamadbah2/stockdesk/pkg/clients/stockapi"
	whatsappclient "github.com/mamadbah2/stockdesk/pkg/clients/whatsapp"
	"github.com/mamadbah2/stockdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	stockClient := stockapi.NewClient(cfg.StockAPI)

	var (
		journals  []outstock.Journal
		store     reportingsvc.Store
		sheetRows reportingsvc.SheetWriter
		alerter   reportingsvc.Alerter
	)

	if cfg.MongoDB.Enabled() {
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
		journals = append(journals, mongoRepo)
		store = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, issuance journal and outstock dashboard disabled")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		journals = append(journals, sheetsRepo)
		sheetRows = sheetsRepo
	} else {
		baseLogger.Warn("sheets credentials missing, spreadsheet ledger disabled")
	}

	if cfg.WhatsApp.Enabled() {
		alerter = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp low stock alerts enabled")
	}

	sessions := outstock.NewSessionManager(stockClient, stockClient, journals,
		outstock.SessionOptions{DecrementOnIssue: cfg.Catalog.DecrementOnIssue},
		logger.Named(baseLogger, "svc.outstock"))
	entrySvc := entrysvc.NewService(stockClient, logger.Named(baseLogger, "svc.entry"))
	reportingSvc := reportingsvc.NewService(stockClient, store, sheetRows, alerter,
		reportingsvc.Options{LowStockThreshold: cfg.Reporting.LowStockThreshold, AlertRecipient: cfg.WhatsApp.AlertRecipient},
		logger.Named(baseLogger, "svc.reporting"))

	engine := router.New(router.Handlers{
		OutStock:  handlers.NewOutStockHandler(sessions, logger.Named(baseLogger, "handlers.outstock")),
		Entry:     handlers.NewEntryHandler(entrySvc, logger.Named(baseLogger, "handlers.entry")),
		Dashboard: handlers.NewDashboardHandler(reportingSvc, logger.Named(baseLogger, "handlers.dashboard")),
	}, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, sessions, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
		// Submissions wait on the inventory server for up to STOCK_API_TIMEOUT.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.StockAPI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("stock_api", cfg.StockAPI.BaseURL))
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
