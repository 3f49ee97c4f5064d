package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/api"
	"github.com/Satwik-user/TradeBot-0/internal/domain"
	"github.com/Satwik-user/TradeBot-0/internal/engine"
	"github.com/Satwik-user/TradeBot-0/internal/infra"
	"github.com/Satwik-user/TradeBot-0/internal/ledger"
	"github.com/Satwik-user/TradeBot-0/internal/market"
	"github.com/Satwik-user/TradeBot-0/internal/parser"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	// 1. Configuration & Logging
	cfg, err := infra.LoadConfig(*configPath)
	if err != nil {
		slog.Error("❌ Configuration failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage
	store, err := openStore(cfg)
	if err != nil {
		slog.Error("❌ Storage initialization failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("✅ Store ready", slog.String("driver", cfg.Storage.Driver))

	// 4. Ledger
	led := ledger.New(store,
		ledger.WithFeeRate(decimal.NewFromFloat(cfg.Trading.FeePercent/100)),
		ledger.WithInitialBalance(decimal.NewFromFloat(cfg.Trading.InitialBalance)),
		ledger.WithQuoteAsset(cfg.Trading.QuoteAsset),
	)

	// 5. Market Data (simulated provider, periodic refresh, optional feed)
	symbols := domain.NewSymbolSet(cfg.Trading.Symbols)
	provider := market.NewSimulatedProvider(time.Now().UnixNano())
	limiter := infra.NewRateLimiter(cfg.Market.RateLimitBurst, cfg.Market.RateLimitPerSec)
	cache := market.NewCache(symbols, provider, limiter)

	refresher := market.NewRefresher(cache, time.Duration(cfg.Market.RefreshIntervalSec)*time.Second)
	refresher.Start(ctx)
	defer refresher.Stop()
	slog.Info("✅ Market refresher started",
		slog.Int("symbols", len(symbols.All())),
		slog.Int("interval_sec", cfg.Market.RefreshIntervalSec))

	if cfg.Market.FeedURL != "" {
		feed := market.NewTickerFeed(cfg.Market.FeedURL, cache, symbols)
		feed.Start(ctx)
		defer feed.Stop()
		slog.Info("✅ Ticker feed started", slog.String("url", cfg.Market.FeedURL))
	}

	// 6. Command Pipeline
	parserOpts := []parser.Option{
		parser.WithWakePhrase(cfg.Trading.WakePhrase),
		parser.WithDefaultQuoteAsset(cfg.Trading.QuoteAsset),
	}
	if len(cfg.Trading.Synonyms) > 0 {
		parserOpts = append(parserOpts, parser.WithSynonyms(cfg.Trading.Synonyms))
	}
	eng := engine.New(parser.New(symbols, parserOpts...), symbols, cache, provider, led)

	// 7. HTTP API
	handler := api.NewAPIHandler(eng, led, cache, symbols, logger)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.SetupRoutes(),
	}

	go func() {
		slog.Info("✅ API server listening", slog.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("API server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.Info("✨ TradeBot core operational. Press Ctrl+C to exit.")

	<-ctx.Done()

	slog.Info("👋 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("API server shutdown failed", slog.Any("error", err))
	}
}

// openStore builds the configured Store implementation.
func openStore(cfg *infra.Config) (ledger.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return ledger.NewMemoryStore(), nil
	case "postgres":
		return ledger.NewPostgresStore(cfg.Storage.ConnStr)
	default:
		if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return ledger.NewSQLiteStore(cfg.Storage.Path)
	}
}
