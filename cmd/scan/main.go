// Command scan performs a single discovery pass and prints the
// surviving contracts as a table. With a predictor configured it also
// scores each contract; without one it prints market prices only.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/courtline/courtline/internal/api"
	"github.com/courtline/courtline/internal/cache"
	"github.com/courtline/courtline/internal/config"
	"github.com/courtline/courtline/internal/discovery"
	"github.com/courtline/courtline/internal/model"
	"github.com/courtline/courtline/internal/predictor"
	"github.com/courtline/courtline/internal/value"
)

func main() {
	configPath := flag.String("config", "configs/trader.local.yaml", "path to config file")
	timeout := flag.Duration("timeout", 60*time.Second, "overall scan timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	apiClient := api.NewClient(
		cfg.API.RestURL,
		nil, // market data endpoints are public
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRateLimit(cfg.API.RateLimit),
	)

	dcfg := discovery.DefaultConfig()
	if len(cfg.Cache.Series) > 0 {
		dcfg.Series = cfg.Cache.Series
	}
	if len(cfg.Discovery.Keywords) > 0 {
		dcfg.Keywords = cfg.Discovery.Keywords
	}
	dcfg.MaxHorizon = cfg.Discovery.MaxHorizon
	dcfg.MinVolume = cfg.Discovery.MinVolume

	marketCache := cache.New(apiClient, cache.Config{
		Series:        cfg.Cache.Series,
		EnrichTop:     cfg.Cache.EnrichTop,
		FallbackQuery: cfg.Cache.FallbackQuery,
	},
		cache.WithPipeline(discovery.NewPipeline(dcfg)),
		cache.WithLogger(logger),
	)

	if err := marketCache.Refresh(ctx); err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}

	snap := marketCache.Get()
	if snap == nil {
		fmt.Println("no snapshot produced")
		return
	}
	if snap.TotalCount == 0 {
		fmt.Println("no contracts found")
		for reason, n := range snap.Rejects {
			fmt.Printf("  rejected %d: %s\n", n, reason)
		}
		return
	}

	var pred *predictor.Client
	if cfg.Predictor.URL != "" {
		pred = predictor.NewClient(cfg.Predictor.URL,
			predictor.WithTimeout(cfg.Predictor.Timeout))
	}

	printTable(ctx, snap, pred, value.NewAnalyzer(cfg.Trader.KellyCeiling))

	fmt.Printf("\n%d contracts (%d enriched), generated %s\n",
		snap.TotalCount, snap.EnrichedCount,
		snap.GeneratedAt.Format(time.RFC3339))
}

func printTable(ctx context.Context, snap *cache.Snapshot, pred *predictor.Client, analyzer *value.Analyzer) {
	table := tablewriter.NewWriter(os.Stdout)
	if pred != nil {
		table.Header("Ticker", "Title", "Yes", "No", "Vol", "Close", "Model", "Side", "Edge", "EV", "Kelly")
	} else {
		table.Header("Ticker", "Title", "Yes", "No", "Vol", "Close")
	}

	for _, in := range snap.Instruments {
		row := []string{
			in.Ticker,
			truncate(in.Title, 32),
			fmt.Sprintf("%d/%d", in.YesBid, in.YesAsk),
			fmt.Sprintf("%d/%d", in.NoBid, in.NoAsk),
			fmt.Sprintf("%d", in.Volume),
			closeLabel(in),
		}

		if pred != nil {
			row = append(row, scoreColumns(ctx, in, pred, analyzer)...)
		}
		table.Append(row)
	}
	table.Render()
}

func scoreColumns(ctx context.Context, in model.Instrument, pred *predictor.Client, analyzer *value.Analyzer) []string {
	home, away, ok := discovery.ParseContest(in.Title)
	if !ok {
		return []string{"-", "-", "-", "-", "-"}
	}

	prob, err := pred.Predict(ctx, model.MatchContext{
		Ticker:      in.Ticker,
		EventTicker: in.EventTicker,
		Home:        home,
		Away:        away,
		CloseTime:   in.CloseTime,
	})
	if err != nil {
		slog.Warn("prediction failed", "ticker", in.Ticker, "error", err)
		return []string{"-", "-", "-", "-", "-"}
	}

	op, ok := analyzer.Evaluate(in, prob)
	if !ok {
		return []string{fmt.Sprintf("%.2f", prob), "-", "-", "-", "-"}
	}
	return []string{
		fmt.Sprintf("%.2f", prob),
		string(op.Side),
		fmt.Sprintf("%+.3f", op.Edge),
		fmt.Sprintf("%+.3f", op.EV),
		fmt.Sprintf("%.3f", op.Kelly),
	}
}

func closeLabel(in model.Instrument) string {
	if in.CloseTime.IsZero() {
		return "-"
	}
	return in.CloseTime.Format("Jan 02 15:04")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
