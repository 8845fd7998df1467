package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"market-mention-bot/internal/newsfeed"
	"market-mention-bot/internal/politics"
	"market-mention-bot/internal/store"
)

// One-shot political risk refresh for every registered company. The bot
// schedules the same batch via cron; this binary exists for manual runs and
// for inspecting the resulting scores.
func main() {
	_ = godotenv.Load()

	path := os.Getenv("BOT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = store.DefaultConfig()
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	kv, err := store.OpenKV(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	source := newsfeed.NewGoogleSource(cfg.News.MaxArticles,
		time.Duration(cfg.News.FetchTimeoutSeconds)*time.Second)
	analyzer := politics.NewAnalyzer(nil)
	batch := politics.NewBatch(kv, source, analyzer,
		cfg.Politics.MaxWorkers, cfg.Politics.CallCeiling)

	fmt.Printf("🔍 Refreshing political risk scores (workers=%d, ceiling=%d)...\n\n",
		cfg.Politics.MaxWorkers, cfg.Politics.CallCeiling)

	ctx := context.Background()
	if err := batch.RefreshAll(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Refresh failed: %v\n", err)
		os.Exit(1)
	}

	risks := make(map[string]float64)
	if err := kv.Get(store.KeyPoliticalRisk, &risks); err != nil {
		fmt.Println("⚠️  No political risk scores stored")
		return
	}

	names := make([]string, 0, len(risks))
	for name := range risks {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("═══════════════════════════════════════════════")
	fmt.Println("           POLITICAL RISK SCORES")
	fmt.Println("═══════════════════════════════════════════════")
	for _, name := range names {
		score := risks[name]
		fmt.Printf("  %-30s %4.1f/10  %s\n", name, score, politics.Band(score))
	}
	fmt.Printf("\n💾 %d companies scored\n", len(names))
}
