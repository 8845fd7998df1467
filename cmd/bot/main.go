package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-mention-bot/internal/logger"
	"market-mention-bot/internal/politics"
	"market-mention-bot/internal/store"
	"market-mention-bot/internal/usage"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("failed to create data dir %s: %v", cfg.DataDir, err)
	}

	kv, err := store.OpenKV(cfg.DataDir)
	must(err)
	defer kv.Close()

	ledger := usage.NewLedger(kv, usage.Caps{
		Read:     cfg.Usage.ReadCap,
		PostUser: cfg.Usage.PostCapUser,
		PostApp:  cfg.Usage.PostCapApp,
	})

	socialClient, err := initializeSocial(ctx, cfg, ledger)
	must(err)

	market := newMarketData(cfg)
	sources := initializeSources(cfg, socialClient)

	// Political risk is scored from the general news feed only.
	analyzer := politics.NewAnalyzer(nil)
	batch := politics.NewBatch(kv, sources[len(sources)-1], analyzer,
		cfg.Politics.MaxWorkers, cfg.Politics.CallCeiling)

	pipe := initializePipeline(cfg, kv, sources, market, batch)
	reporter := newReporter(cfg, kv, market)

	loop, err := initializeLoop(cfg, socialClient, pipe, reporter)
	must(err)

	stopCron, err := schedulePoliticsRefresh(ctx, cfg, batch)
	must(err)
	defer stopCron()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutdown signal received")
		cancel()
	}()

	logger.Info(ctx, "Mention bot started",
		"cycle_seconds", cfg.Scan.CycleSeconds,
		"timezone", cfg.Market.Timezone)

	if err := loop.Run(ctx); err != nil && err != context.Canceled {
		logger.ErrorWithErr(ctx, "Mention loop exited", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = logger.Shutdown(shutdownCtx)
}
