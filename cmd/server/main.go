package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/calving"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/config"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/repository/mongodb"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/repository/sheets"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/scheduler"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/server/handlers"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/server/router"
	herdsvc "github.com/StockmansWallet/StockmansWallet-sub006/internal/service/herd"
	portfoliosvc "github.com/StockmansWallet/StockmansWallet-sub006/internal/service/portfolio"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/service/preferences"
	pricesyncsvc "github.com/StockmansWallet/StockmansWallet-sub006/internal/service/pricesync"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/valuation"
	"github.com/StockmansWallet/StockmansWallet-sub006/pkg/clients/marketdata"
	"github.com/StockmansWallet/StockmansWallet-sub006/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// The mongo quote collection is always a price source; a configured
	// Google Sheet joins the pool ahead of it.
	priceSources := valuation.MultiSource{}
	if cfg.Sheets.SpreadsheetID != "" {
		sheetSource, err := sheets.NewPriceSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init price sheet source", zap.Error(err))
		}
		priceSources = append(priceSources, sheetSource)
		baseLogger.Info("price sheet source enabled", zap.String("range", cfg.Sheets.QuoteRange))
	}
	priceSources = append(priceSources, store)

	evaluator := valuation.NewEvaluator(priceSources, baseLogger)

	defaults := models.CostProfile{
		AgistmentMonthly:    cfg.Valuation.AgistmentMonthly,
		FeedMonthly:         cfg.Valuation.FeedMonthly,
		VetMonthly:          cfg.Valuation.VetMonthly,
		FreightPerKm:        cfg.Valuation.FreightPerKm,
		AnnualMortalityRate: cfg.Valuation.AnnualMortalityRate,
		DefaultCalvingRate:  cfg.Valuation.DefaultCalvingRate,
		PigBirthWeightRatio: cfg.Valuation.PigBirthWeightRatio,
	}
	prefs := preferences.NewProvider(
		store,
		defaults,
		models.PriceStat(cfg.Valuation.PriceStat),
		cfg.Valuation.Region,
		cfg.Valuation.FreightDistanceKm,
		baseLogger,
	)

	calvingProcessor := calving.NewProcessor(store, baseLogger)
	portfolioSvc := portfoliosvc.NewService(
		store,
		prefs,
		evaluator,
		calvingProcessor,
		store,
		baseLogger,
		portfoliosvc.WithWorkers(cfg.Valuation.Workers),
		portfoliosvc.WithLookback(cfg.Valuation.HistoryLookbackDays),
	)
	herdSvc := herdsvc.NewService(store, prefs, evaluator, baseLogger)

	var priceSync *pricesyncsvc.Service
	if cfg.MarketFeed.BaseURL != "" {
		feed := marketdata.NewClient(cfg.MarketFeed)
		priceSync = pricesyncsvc.NewService(feed, store, cfg.MarketFeed.Categories, baseLogger)
		baseLogger.Info("market feed client enabled", zap.String("base_url", cfg.MarketFeed.BaseURL))
	} else {
		baseLogger.Info("market feed not configured, price sync disabled")
	}

	// A typed nil pointer must not reach the handler's interface field.
	var priceSyncRunner handlers.PriceSyncRunner
	if priceSync != nil {
		priceSyncRunner = priceSync
	}

	portfolioHandler := handlers.NewPortfolioHandler(portfolioSvc, baseLogger.Named("handlers.portfolio"))
	herdHandler := handlers.NewHerdHandler(herdSvc, baseLogger.Named("handlers.herd"))
	settingsHandler := handlers.NewSettingsHandler(prefs, priceSyncRunner, baseLogger.Named("handlers.settings"))
	engine := router.New(portfolioHandler, herdHandler, settingsHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, portfolioSvc, store, priceSync, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
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
