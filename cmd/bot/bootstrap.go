package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"market-mention-bot/internal/interfaces"
	"market-mention-bot/internal/lock"
	"market-mention-bot/internal/logger"
	"market-mention-bot/internal/marketdata"
	"market-mention-bot/internal/mention"
	"market-mention-bot/internal/newsfeed"
	"market-mention-bot/internal/pipeline"
	"market-mention-bot/internal/politics"
	"market-mention-bot/internal/report"
	"market-mention-bot/internal/sentiment"
	"market-mention-bot/internal/social"
	"market-mention-bot/internal/social/socialobs"
	"market-mention-bot/internal/store"
	"market-mention-bot/internal/types"
	"market-mention-bot/internal/usage"
)

// initializeSystem loads the environment and sets up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("BOT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn(ctx, "No config file found, using defaults", "path", path)
			return store.DefaultConfig(), nil
		}
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeSocial builds the posting API client with observability. The
// bearer token and account id come from the environment, never the config
// file.
func initializeSocial(ctx context.Context, cfg *store.Config, ledger *usage.Ledger) (interfaces.SocialClient, error) {
	token := os.Getenv("X_BEARER_TOKEN")
	userID := os.Getenv("X_USER_ID")
	if token == "" || userID == "" {
		return nil, fmt.Errorf("X_BEARER_TOKEN and X_USER_ID must be set")
	}

	client := social.NewClient(token, userID, ledger,
		time.Duration(cfg.News.FetchTimeoutSeconds)*time.Second)

	logger.Info(ctx, "Posting API client ready", "user_id", userID)
	return socialobs.Wrap(client), nil
}

// initializeSources builds the three news feeds in aggregation order.
func initializeSources(cfg *store.Config, socialClient interfaces.SocialClient) []interfaces.NewsSource {
	fetchTimeout := time.Duration(cfg.News.FetchTimeoutSeconds) * time.Second
	return []interfaces.NewsSource{
		newsfeed.NewMicroblogSource(socialClient, cfg.News.MicroblogMaxResults),
		newsfeed.NewYahooSource(cfg.News.MaxArticles, fetchTimeout),
		newsfeed.NewGoogleSource(cfg.News.MaxArticles, fetchTimeout),
	}
}

// initializePipeline wires the freshness pipeline and its derivation helpers.
func initializePipeline(
	cfg *store.Config,
	kv interfaces.KeyValue,
	sources []interfaces.NewsSource,
	market interfaces.MarketData,
	batch *politics.Batch,
) *pipeline.Freshness {
	scorer := sentiment.NewScorer(cfg.Sentiment.PositiveKeywords, cfg.Sentiment.NegativeKeywords)
	agg := sentiment.NewAggregator(map[types.Source]float64{
		types.SourceMicroblog: cfg.Sentiment.Reliability.Microblog,
		types.SourceFinance:   cfg.Sentiment.Reliability.Finance,
		types.SourceGeneral:   cfg.Sentiment.Reliability.General,
	})

	return pipeline.New(
		kv, sources, market, scorer, agg, batch,
		time.Duration(cfg.Freshness.NewsTimeoutSeconds)*time.Second,
		time.Duration(cfg.Freshness.PollIntervalSeconds)*time.Second,
	)
}

// initializeLoop builds the mention loop from config.
func initializeLoop(
	cfg *store.Config,
	socialClient interfaces.SocialClient,
	pipe interfaces.Pipeline,
	reporter interfaces.Reporter,
) (*mention.Loop, error) {
	hours, err := mention.NewMarketHours(
		cfg.Market.Timezone,
		cfg.Market.OpenHour, cfg.Market.OpenMin,
		cfg.Market.CloseHour, cfg.Market.CloseMin,
	)
	if err != nil {
		return nil, err
	}

	params := mention.Params{
		Cycle:         time.Duration(cfg.Scan.CycleSeconds) * time.Second,
		WindowOpen:    time.Duration(cfg.Scan.WindowOpenMinutes) * time.Minute,
		WindowClosed:  time.Duration(cfg.Scan.WindowClosedMinutes) * time.Minute,
		MaxMentionAge: time.Duration(cfg.Scan.MaxMentionAgeMinutes) * time.Minute,
		ReplyPace:     time.Duration(cfg.Scan.ReplyPaceSeconds) * time.Second,
		ErrorCooldown: time.Duration(cfg.Scan.ErrorCooldownSeconds) * time.Second,
		LockTimeout:   time.Duration(cfg.Scan.LockTimeoutSeconds) * time.Second,
	}

	fileLock := lock.New(filepath.Join(cfg.DataDir, cfg.Scan.LockFile))

	return mention.NewLoop(
		socialClient, pipe, reporter, hours, fileLock, params,
		cfg.Access.AuthorizedUsers, cfg.Access.PromoAccounts,
	), nil
}

// schedulePoliticsRefresh starts the cron-driven batch rescoring when a
// schedule is configured. Returns a stop function.
func schedulePoliticsRefresh(ctx context.Context, cfg *store.Config, batch *politics.Batch) (func(), error) {
	if cfg.Politics.RefreshCron == "" {
		logger.Info(ctx, "Scheduled political refresh disabled")
		return func() {}, nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.Politics.RefreshCron, func() {
		if err := batch.RefreshAll(ctx); err != nil {
			logger.ErrorWithErr(ctx, "Scheduled political refresh failed", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid politics.refresh_cron %q: %w", cfg.Politics.RefreshCron, err)
	}
	c.Start()
	logger.Info(ctx, "Scheduled political refresh", "cron", cfg.Politics.RefreshCron)
	return func() { c.Stop() }, nil
}

// newMarketData builds the market data client from config.
func newMarketData(cfg *store.Config) *marketdata.Client {
	return marketdata.NewClient(
		time.Duration(cfg.News.FetchTimeoutSeconds)*time.Second,
		time.Duration(cfg.News.MarketDataCacheMinute)*time.Minute,
	)
}

// newReporter builds the report generator from config.
func newReporter(cfg *store.Config, kv interfaces.KeyValue, market interfaces.MarketData) *report.Generator {
	scorer := sentiment.NewScorer(cfg.Sentiment.PositiveKeywords, cfg.Sentiment.NegativeKeywords)
	return report.NewGenerator(kv, market, scorer,
		time.Duration(cfg.Report.CacheTTLMinutes)*time.Minute)
}
