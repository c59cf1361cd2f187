package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtline/courtline/internal/api"
	"github.com/courtline/courtline/internal/auth"
	"github.com/courtline/courtline/internal/cache"
	"github.com/courtline/courtline/internal/config"
	"github.com/courtline/courtline/internal/discovery"
	"github.com/courtline/courtline/internal/journal"
	"github.com/courtline/courtline/internal/predictor"
	"github.com/courtline/courtline/internal/server"
	"github.com/courtline/courtline/internal/trader"
	"github.com/courtline/courtline/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/trader.local.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Bootstrap logger; replaced once config is loaded.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting trader",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = buildLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		"api_url", cfg.API.RestURL,
		"series", cfg.Cache.Series,
		"trader_enabled", cfg.Trader.Enabled,
		"dry_run", cfg.Trader.DryRun,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Request signing is only needed for portfolio and order endpoints;
	// a read-only deployment can run without credentials.
	var signer *auth.Signer
	if cfg.API.APIKey != "" && cfg.API.PrivateKeyPath != "" {
		signer, err = auth.NewSigner(cfg.API.APIKey, cfg.API.PrivateKeyPath)
		if err != nil {
			logger.Error("failed to load signing key", "error", err)
			os.Exit(1)
		}
		logger.Info("request signing enabled", "key_id", cfg.API.APIKey)
	}

	apiClient := api.NewClient(
		cfg.API.RestURL,
		signer,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRateLimit(cfg.API.RateLimit),
	)

	// Check exchange status
	status, err := apiClient.GetExchangeStatus(ctx)
	if err != nil {
		logger.Error("failed to get exchange status", "error", err)
		os.Exit(1)
	}
	logger.Info("exchange status",
		"exchange_active", status.ExchangeActive,
		"trading_active", status.TradingActive,
	)

	if signer != nil {
		balance, err := apiClient.GetBalance(ctx)
		if err != nil {
			logger.Warn("failed to fetch account balance", "error", err)
		} else {
			logger.Info("account balance", "balance_cents", balance)
		}
	}

	dcfg := discovery.DefaultConfig()
	dcfg.Series = cfg.Cache.Series
	if len(cfg.Discovery.Keywords) > 0 {
		dcfg.Keywords = cfg.Discovery.Keywords
	}
	if len(cfg.Discovery.ExclusionTerms) > 0 {
		dcfg.ExclusionTerms = cfg.Discovery.ExclusionTerms
	}
	dcfg.MaxHorizon = cfg.Discovery.MaxHorizon
	dcfg.MinVolume = cfg.Discovery.MinVolume

	marketCache := cache.New(apiClient, cache.Config{
		PollInterval:  cfg.Cache.PollInterval,
		Series:        cfg.Cache.Series,
		EnrichTop:     cfg.Cache.EnrichTop,
		MaxStaleness:  cfg.Cache.MaxStaleness,
		FallbackQuery: cfg.Cache.FallbackQuery,
	},
		cache.WithPipeline(discovery.NewPipeline(dcfg)),
		cache.WithLogger(logger),
	)

	if err := marketCache.Start(ctx); err != nil {
		logger.Error("failed to start market cache", "error", err)
		os.Exit(1)
	}
	defer stopComponent("market cache", marketCache.Stop, logger)

	var (
		ordersSource server.OrderSource
		autoTrader   *trader.AutoTrader
	)
	if cfg.Trader.Enabled {
		pred := predictor.NewClient(
			cfg.Predictor.URL,
			predictor.WithTimeout(cfg.Predictor.Timeout),
		)

		traderOpts := []trader.Option{trader.WithLogger(logger)}
		if cfg.Journal.Enabled {
			j, err := journal.Open(ctx, cfg.Journal.DB, logger)
			if err != nil {
				logger.Error("failed to open order journal", "error", err)
				os.Exit(1)
			}
			defer j.Close()
			traderOpts = append(traderOpts, trader.WithRecorder(j))
		}

		autoTrader = trader.New(apiClient, marketCache, pred, trader.Config{
			ScanInterval: cfg.Trader.ScanInterval,
			MinEdge:      cfg.Trader.MinEdge,
			MinEV:        cfg.Trader.MinEV,
			MinVolume:    cfg.Trader.MinVolume,
			MaxContracts: cfg.Trader.MaxContracts,
			KellyCeiling: cfg.Trader.KellyCeiling,
			DryRun:       cfg.Trader.DryRun,
		}, traderOpts...)

		if err := autoTrader.Start(ctx); err != nil {
			logger.Error("failed to start autotrader", "error", err)
			os.Exit(1)
		}
		defer stopComponent("autotrader", autoTrader.Stop, logger)
		ordersSource = autoTrader
	}

	httpServer := server.New(
		cfg.Server.Addr,
		server.NewHandler(marketCache, ordersSource, logger),
		logger,
	)
	httpServer.Start()
	defer stopComponent("http server", httpServer.Stop, logger)

	logger.Info("trader running", "addr", cfg.Server.Addr)

	<-ctx.Done()
	logger.Info("shutting down...")
}

func buildLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func stopComponent(name string, stop func(context.Context) error, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stop(ctx); err != nil {
		logger.Error("shutdown error", "component", name, "error", err)
	}
}
