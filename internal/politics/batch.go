package politics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"market-mention-bot/internal/interfaces"
	"market-mention-bot/internal/logger"
	"market-mention-bot/internal/store"
)

// maxPoolSize is the hard ceiling on concurrent scoring workers regardless
// of configuration.
const maxPoolSize = 8

// politicalQuery widens a company query toward regulatory coverage so the
// general feed returns the articles the analyzer cares about.
func politicalQuery(company string) string {
	return company + " regulation policy government"
}

// Batch refreshes the stored political risk scores for every registered
// company. It runs independently of the mention loop and takes no part in
// its cross-process lock; the only shared state is the risk document, which
// is written in a single put at the end of the run.
type Batch struct {
	kv       interfaces.KeyValue
	source   interfaces.NewsSource
	analyzer *Analyzer
	workers  int
	ceiling  int
}

// NewBatch builds a batch job. workers is clamped to [1, 8]; ceiling bounds
// how many companies one run may fetch coverage for (0 means unbounded).
func NewBatch(kv interfaces.KeyValue, source interfaces.NewsSource, analyzer *Analyzer, workers, ceiling int) *Batch {
	if workers < 1 {
		workers = 1
	}
	if workers > maxPoolSize {
		workers = maxPoolSize
	}
	return &Batch{kv: kv, source: source, analyzer: analyzer, workers: workers, ceiling: ceiling}
}

// RefreshAll rescores every registered company and replaces the risk
// document. Companies whose coverage cannot be fetched keep their previous
// score.
func (b *Batch) RefreshAll(ctx context.Context) error {
	companies := make(map[string]string)
	if err := b.kv.Get(store.KeyCompanies, &companies); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Info(ctx, "No registered companies, skipping political refresh")
			return nil
		}
		return fmt.Errorf("failed to load company registry: %w", err)
	}

	names := make([]string, 0, len(companies))
	for name := range companies {
		names = append(names, name)
	}
	sort.Strings(names)
	if b.ceiling > 0 && len(names) > b.ceiling {
		logger.Warn(ctx, "Political refresh truncated by call ceiling",
			"companies", len(names), "ceiling", b.ceiling)
		names = names[:b.ceiling]
	}

	risks := make(map[string]float64)
	if err := b.kv.Get(store.KeyPoliticalRisk, &risks); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to load political risk document: %w", err)
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan string)
	)
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for company := range jobs {
				score, factors, err := b.scoreCompany(ctx, company)
				if err != nil {
					logger.Warn(ctx, "Political scoring failed, keeping previous score",
						"company", company, "error", err.Error())
					continue
				}
				mu.Lock()
				risks[company] = score
				mu.Unlock()
				logger.Info(ctx, "Political risk scored",
					"company", company, "score", score, "band", Band(score), "factors", len(factors))
			}
		}()
	}

	for _, name := range names {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- name:
		}
	}
	close(jobs)
	wg.Wait()

	if len(risks) == 0 {
		return nil
	}
	if err := b.kv.Put(store.KeyPoliticalRisk, risks); err != nil {
		return fmt.Errorf("failed to persist political risk document: %w", err)
	}
	return nil
}

// RefreshCompany rescores a single company and merges the result into the
// risk document. Used by the freshness pipeline when a mention arrives for a
// company with no stored score.
func (b *Batch) RefreshCompany(ctx context.Context, company string) (float64, error) {
	score, _, err := b.scoreCompany(ctx, company)
	if err != nil {
		return 0, err
	}

	risks := make(map[string]float64)
	if err := b.kv.Get(store.KeyPoliticalRisk, &risks); err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("failed to load political risk document: %w", err)
	}
	risks[company] = score
	if err := b.kv.Put(store.KeyPoliticalRisk, risks); err != nil {
		return 0, fmt.Errorf("failed to persist political risk document: %w", err)
	}
	return score, nil
}

func (b *Batch) scoreCompany(ctx context.Context, company string) (float64, []string, error) {
	set, err := b.source.Fetch(ctx, politicalQuery(company), "")
	if err != nil {
		return 0, nil, fmt.Errorf("failed to fetch political coverage for %s: %w", company, err)
	}
	score, factors := b.analyzer.Score(set.List())
	return score, factors, nil
}
