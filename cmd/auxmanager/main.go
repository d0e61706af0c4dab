package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/auxmanager/internal/app"
	"github.com/odyssey-erp/auxmanager/internal/catalog"
	"github.com/odyssey-erp/auxmanager/internal/manager"
	managerhttp "github.com/odyssey-erp/auxmanager/internal/manager/http"
	"github.com/odyssey-erp/auxmanager/internal/observability"
	"github.com/odyssey-erp/auxmanager/internal/platform/cache"
	"github.com/odyssey-erp/auxmanager/internal/shared"
	"github.com/odyssey-erp/auxmanager/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	upstream := manager.NewClient(cfg.UpstreamBaseURL, metrics.InstrumentDoer(&http.Client{Timeout: cfg.UpstreamTimeout}))

	records := catalog.New(redisClient, upstream, map[manager.Type]string{
		manager.TypeCategory: cfg.CatalogCategoryPath,
		manager.TypeUnit:     cfg.CatalogUnitPath,
	}, cfg.CatalogTTL, logger)

	opts := manager.Options{
		Logger:  logger,
		Printer: manager.NewPrinter(cfg.ManagerLocale),
	}
	var source managerhttp.RecordSource
	if records.Configured() {
		opts.Refresher = records
		source = records
	} else {
		logger.Info("no catalog source configured, changes reload the page")
	}
	controller := manager.NewController(upstream, opts)
	managerHandler := managerhttp.NewHandler(logger, controller, source, templates, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		ManagerHandler: managerHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("upstream", cfg.UpstreamBaseURL))
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
