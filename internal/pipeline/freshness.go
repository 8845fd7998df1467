package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"market-mention-bot/internal/interfaces"
	"market-mention-bot/internal/logger"
	"market-mention-bot/internal/politics"
	"market-mention-bot/internal/sentiment"
	"market-mention-bot/internal/store"
	"market-mention-bot/internal/types"
)

// ErrNoFreshNews is returned when no source produced any coverage for a
// company within the news timeout.
var ErrNoFreshNews = errors.New("no fresh news available")

// Freshness is the data pipeline a report depends on. Ensure drives a fixed
// sequence for one ticker: resolve the company, force-refresh every news
// feed, wait for at least one feed to land, then derive sentiment and
// political risk if they are missing. A report is only generated after
// Ensure returns nil, so stale or partial data never reaches a reply.
type Freshness struct {
	kv       interfaces.KeyValue
	sources  []interfaces.NewsSource
	market   interfaces.MarketData
	scorer   *sentiment.Scorer
	agg      *sentiment.Aggregator
	politics *politics.Batch

	newsTimeout  time.Duration
	pollInterval time.Duration
}

// New builds a freshness pipeline over the given feeds and derivation
// helpers.
func New(
	kv interfaces.KeyValue,
	sources []interfaces.NewsSource,
	market interfaces.MarketData,
	scorer *sentiment.Scorer,
	agg *sentiment.Aggregator,
	pol *politics.Batch,
	newsTimeout, pollInterval time.Duration,
) *Freshness {
	return &Freshness{
		kv:           kv,
		sources:      sources,
		market:       market,
		scorer:       scorer,
		agg:          agg,
		politics:     pol,
		newsTimeout:  newsTimeout,
		pollInterval: pollInterval,
	}
}

// Ensure makes every document a report for the ticker reads from fresh, and
// returns the resolved company name. An error means the caller must not
// produce a report.
func (f *Freshness) Ensure(ctx context.Context, ticker, company string) (string, error) {
	timer := logger.StartOperation(ctx, "freshness_ensure", "ticker", ticker)

	name, err := f.resolveCompany(ctx, ticker, company)
	if err != nil {
		timer.EndWithError(err)
		return "", err
	}

	f.refreshNews(ctx, name, ticker)

	ok := Await(ctx, f.pollInterval, f.newsTimeout, func() bool {
		return f.anyNewsStored(name)
	})
	if !ok {
		err := fmt.Errorf("%w: %s", ErrNoFreshNews, name)
		timer.EndWithError(err)
		return "", err
	}

	if err := f.ensureSentiment(ctx, name); err != nil {
		timer.EndWithError(err)
		return "", err
	}
	f.ensurePoliticalRisk(ctx, name)

	timer.End("company", name)
	return name, nil
}

// resolveCompany maps a ticker to its registered company name, consulting
// market data and extending the registry for first-time tickers. When the
// caller already knows the company name it wins over the lookup.
func (f *Freshness) resolveCompany(ctx context.Context, ticker, company string) (string, error) {
	registry := make(map[string]string)
	if err := f.kv.Get(store.KeyCompanies, &registry); err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("failed to load company registry: %w", err)
	}

	if company != "" {
		for name := range registry {
			if strings.EqualFold(name, company) {
				return name, nil
			}
		}
	} else {
		for name, t := range registry {
			if strings.EqualFold(t, ticker) {
				return name, nil
			}
		}
	}

	name := company
	if name == "" {
		resolved, err := f.market.CompanyName(ctx, ticker)
		if err != nil || resolved == "" {
			logger.Warn(ctx, "Company name lookup failed, using ticker as name",
				"ticker", ticker)
			resolved = strings.ToUpper(ticker)
		}
		name = resolved
	}

	registry[name] = strings.ToUpper(ticker)
	if err := f.kv.Put(store.KeyCompanies, registry); err != nil {
		return "", fmt.Errorf("failed to register company %s: %w", name, err)
	}
	logger.Info(ctx, "Registered company", "company", name, "ticker", ticker)
	return name, nil
}

// refreshNews force-fetches every feed. A failing or empty feed is logged
// and skipped; the await step decides whether enough coverage landed.
func (f *Freshness) refreshNews(ctx context.Context, company, ticker string) {
	for _, src := range f.sources {
		set, err := src.Fetch(ctx, company, ticker)
		if err != nil {
			logger.Warn(ctx, "News fetch failed",
				"source", string(src.Name()), "company", company, "error", err.Error())
			continue
		}
		if set.Len() == 0 {
			logger.Debug(ctx, "News fetch returned nothing",
				"source", string(src.Name()), "company", company)
			continue
		}
		key := store.NewsKey(src.Name(), company)
		if err := f.kv.Put(key, set); err != nil {
			logger.ErrorWithErr(ctx, "Failed to store news document", err,
				"source", string(src.Name()), "company", company)
			continue
		}
		logger.Info(ctx, "News refreshed",
			"source", string(src.Name()), "company", company, "articles", set.Len())
	}
}

func (f *Freshness) anyNewsStored(company string) bool {
	for _, src := range f.sources {
		var set types.ArticleSet
		if err := f.kv.Get(store.NewsKey(src.Name(), company), &set); err != nil {
			continue
		}
		if set.Len() > 0 {
			return true
		}
	}
	return false
}

// ensureSentiment derives and stores the combined sentiment for the company
// if the document does not already carry it.
func (f *Freshness) ensureSentiment(ctx context.Context, company string) error {
	combined := make(map[string]types.CombinedSentiment)
	if err := f.kv.Get(store.KeyCombinedSentiment, &combined); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to load sentiment document: %w", err)
	}
	if _, ok := combined[company]; ok {
		return nil
	}

	perSource := make(map[types.Source]types.SourceSentiment)
	for _, src := range f.sources {
		var set types.ArticleSet
		if err := f.kv.Get(store.NewsKey(src.Name(), company), &set); err != nil {
			continue
		}
		res := f.scorer.Score(set.List())
		perSource[src.Name()] = res.Metrics()
	}

	result, err := f.agg.CombineSources(perSource)
	if err != nil {
		return fmt.Errorf("failed to combine sentiment for %s: %w", company, err)
	}
	combined[company] = result
	if err := f.kv.Put(store.KeyCombinedSentiment, combined); err != nil {
		return fmt.Errorf("failed to store sentiment for %s: %w", company, err)
	}
	logger.Info(ctx, "Sentiment derived",
		"company", company, "positive", result.Positive, "negative", result.Negative)
	return nil
}

// ensurePoliticalRisk scores the company if no stored score exists. Failure
// here does not fail the pipeline; reports fall back to the moderate
// default.
func (f *Freshness) ensurePoliticalRisk(ctx context.Context, company string) {
	risks := make(map[string]float64)
	if err := f.kv.Get(store.KeyPoliticalRisk, &risks); err == nil {
		if _, ok := risks[company]; ok {
			return
		}
	}
	if f.politics == nil {
		return
	}
	if _, err := f.politics.RefreshCompany(ctx, company); err != nil {
		logger.Warn(ctx, "Political risk refresh failed, report will use default",
			"company", company, "error", err.Error())
	}
}
