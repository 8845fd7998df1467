package politics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"market-mention-bot/internal/store"
	"market-mention-bot/internal/types"
)

func TestScoreNoArticles(t *testing.T) {
	a := NewAnalyzer(nil)
	score, factors := a.Score(nil)
	if score != DefaultScore {
		t.Errorf("Expected default score %v with no articles, got %v", DefaultScore, score)
	}
	if factors != nil {
		t.Errorf("Expected no factors, got %v", factors)
	}
}

func TestScoreBounds(t *testing.T) {
	a := NewAnalyzer(nil)

	calm := []types.RawArticle{
		{Title: "Quarterly earnings beat expectations", Summary: "Revenue grew on strong demand"},
		{Title: "New product launch announced", Summary: "Shipping next quarter"},
	}
	score, factors := a.Score(calm)
	if score != 0 {
		t.Errorf("Expected 0 for apolitical coverage, got %v", score)
	}
	if len(factors) != 0 {
		t.Errorf("Expected no factors, got %v", factors)
	}

	hot := []types.RawArticle{
		{Title: "Antitrust probe launched by DOJ", Summary: "Regulation and sanctions loom as congress opens investigation"},
		{Title: "Tariff fallout deepens", Summary: "Export control ban and national security investigation under new legislation"},
	}
	score, factors = a.Score(hot)
	if score < 5 || score > 10 {
		t.Errorf("Expected a high score for saturated coverage, got %v", score)
	}
	if len(factors) == 0 {
		t.Error("Expected contributing factors for political coverage")
	}
}

func TestScoreCustomKeywords(t *testing.T) {
	a := NewAnalyzer([]string{"Widget"})
	score, factors := a.Score([]types.RawArticle{
		{Title: "widget widget widget", Summary: ""},
	})
	if score != 10 {
		t.Errorf("Expected saturation at 10, got %v", score)
	}
	if len(factors) != 1 || factors[0] != "widget" {
		t.Errorf("Expected lowered keyword as factor, got %v", factors)
	}
}

func TestBand(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, "Very Low"},
		{2, "Very Low"},
		{2.1, "Low"},
		{4, "Low"},
		{5, "Moderate"},
		{6.5, "High"},
		{8.1, "Very High"},
		{10, "Very High"},
	}
	for _, c := range cases {
		if got := Band(c.score); got != c.want {
			t.Errorf("Band(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

type memKV struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{docs: make(map[string][]byte)}
}

func (m *memKV) Put(key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = data
	return nil
}

func (m *memKV) Get(key string, out any) error {
	m.mu.Lock()
	data, ok := m.docs[key]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	return json.Unmarshal(data, out)
}

func (m *memKV) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[key]
	return ok
}

type stubSource struct {
	articles []types.RawArticle
	err      error
	calls    atomic.Int32
	active   atomic.Int32
	peak     atomic.Int32
}

func (s *stubSource) Name() types.Source { return types.SourceGeneral }

func (s *stubSource) Fetch(ctx context.Context, company, ticker string) (*types.ArticleSet, error) {
	s.calls.Add(1)
	n := s.active.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	defer s.active.Add(-1)
	if s.err != nil {
		return nil, s.err
	}
	set := types.NewArticleSet()
	for i, art := range s.articles {
		set.Add(fmt.Sprintf("a%d", i), art)
	}
	return set, nil
}

func TestRefreshAllScoresEveryCompany(t *testing.T) {
	kv := newMemKV()
	companies := map[string]string{"Apple": "AAPL", "Tesla": "TSLA", "Nvidia": "NVDA"}
	if err := kv.Put(store.KeyCompanies, companies); err != nil {
		t.Fatal(err)
	}

	src := &stubSource{articles: []types.RawArticle{
		{Title: "Antitrust regulation tightens", Summary: "congress investigation"},
	}}
	b := NewBatch(kv, src, NewAnalyzer(nil), 3, 0)

	if err := b.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll failed: %v", err)
	}
	if got := src.calls.Load(); got != 3 {
		t.Errorf("Expected 3 fetches, got %d", got)
	}

	risks := make(map[string]float64)
	if err := kv.Get(store.KeyPoliticalRisk, &risks); err != nil {
		t.Fatalf("Failed to read risk document: %v", err)
	}
	for name := range companies {
		score, ok := risks[name]
		if !ok {
			t.Errorf("Missing score for %s", name)
			continue
		}
		if score < 0 || score > 10 {
			t.Errorf("Score for %s out of range: %v", name, score)
		}
	}
}

func TestRefreshAllCallCeiling(t *testing.T) {
	kv := newMemKV()
	companies := make(map[string]string)
	for i := 0; i < 10; i++ {
		companies[fmt.Sprintf("Company%02d", i)] = fmt.Sprintf("C%02d", i)
	}
	if err := kv.Put(store.KeyCompanies, companies); err != nil {
		t.Fatal(err)
	}

	src := &stubSource{}
	b := NewBatch(kv, src, NewAnalyzer(nil), 2, 4)
	if err := b.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll failed: %v", err)
	}
	if got := src.calls.Load(); got != 4 {
		t.Errorf("Expected the ceiling to cap fetches at 4, got %d", got)
	}
}

func TestRefreshAllWorkerBound(t *testing.T) {
	kv := newMemKV()
	companies := make(map[string]string)
	for i := 0; i < 20; i++ {
		companies[fmt.Sprintf("Company%02d", i)] = fmt.Sprintf("C%02d", i)
	}
	if err := kv.Put(store.KeyCompanies, companies); err != nil {
		t.Fatal(err)
	}

	src := &stubSource{}
	b := NewBatch(kv, src, NewAnalyzer(nil), 100, 0)
	if b.workers != maxPoolSize {
		t.Fatalf("Expected workers clamped to %d, got %d", maxPoolSize, b.workers)
	}
	if err := b.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll failed: %v", err)
	}
	if peak := src.peak.Load(); peak > maxPoolSize {
		t.Errorf("Observed %d concurrent fetches, bound is %d", peak, maxPoolSize)
	}
}

func TestRefreshAllKeepsScoreOnFetchError(t *testing.T) {
	kv := newMemKV()
	if err := kv.Put(store.KeyCompanies, map[string]string{"Apple": "AAPL"}); err != nil {
		t.Fatal(err)
	}
	if err := kv.Put(store.KeyPoliticalRisk, map[string]float64{"Apple": 7.5}); err != nil {
		t.Fatal(err)
	}

	src := &stubSource{err: errors.New("feed down")}
	b := NewBatch(kv, src, NewAnalyzer(nil), 1, 0)
	if err := b.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll failed: %v", err)
	}

	risks := make(map[string]float64)
	if err := kv.Get(store.KeyPoliticalRisk, &risks); err != nil {
		t.Fatalf("Failed to read risk document: %v", err)
	}
	if risks["Apple"] != 7.5 {
		t.Errorf("Expected previous score to survive a fetch failure, got %v", risks["Apple"])
	}
}

func TestRefreshAllNoRegistry(t *testing.T) {
	b := NewBatch(newMemKV(), &stubSource{}, NewAnalyzer(nil), 1, 0)
	if err := b.RefreshAll(context.Background()); err != nil {
		t.Errorf("Expected empty registry to be a no-op, got %v", err)
	}
}

func TestRefreshCompany(t *testing.T) {
	kv := newMemKV()
	src := &stubSource{articles: []types.RawArticle{
		{Title: "Tariff probe", Summary: "sanctions and regulation"},
	}}
	b := NewBatch(kv, src, NewAnalyzer(nil), 1, 0)

	score, err := b.RefreshCompany(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("RefreshCompany failed: %v", err)
	}
	if score <= 0 || score > 10 {
		t.Errorf("Score out of range: %v", score)
	}

	risks := make(map[string]float64)
	if err := kv.Get(store.KeyPoliticalRisk, &risks); err != nil {
		t.Fatalf("Failed to read risk document: %v", err)
	}
	if risks["Apple"] != score {
		t.Errorf("Expected persisted score %v, got %v", score, risks["Apple"])
	}
}
