package types

import "time"

// Source identifies one of the three news feeds the bot aggregates.
type Source string

const (
	SourceMicroblog Source = "microblog"
	SourceFinance   Source = "finance"
	SourceGeneral   Source = "general"
)

// Sources lists all feeds in aggregation order.
var Sources = []Source{SourceMicroblog, SourceFinance, SourceGeneral}

// RawArticle is a single news item as fetched from a source. Immutable once stored.
type RawArticle struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Provider string `json:"provider"`
}

// ArticleSet is an ordered collection of articles keyed by an opaque id.
// Order follows insertion; ids are only used for dedupe across refreshes.
type ArticleSet struct {
	IDs      []string              `json:"ids"`
	Articles map[string]RawArticle `json:"articles"`
}

// NewArticleSet returns an empty, ready-to-append set.
func NewArticleSet() *ArticleSet {
	return &ArticleSet{Articles: map[string]RawArticle{}}
}

// Add appends an article under id, ignoring duplicate ids.
func (s *ArticleSet) Add(id string, a RawArticle) {
	if s.Articles == nil {
		s.Articles = map[string]RawArticle{}
	}
	if _, ok := s.Articles[id]; ok {
		return
	}
	s.IDs = append(s.IDs, id)
	s.Articles[id] = a
}

// List returns the articles in insertion order.
func (s *ArticleSet) List() []RawArticle {
	if s == nil {
		return nil
	}
	out := make([]RawArticle, 0, len(s.IDs))
	for _, id := range s.IDs {
		out = append(out, s.Articles[id])
	}
	return out
}

// Len reports the number of articles; safe on nil.
func (s *ArticleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.IDs)
}

// SourceSentiment holds per-source sentiment ratios for one company.
type SourceSentiment struct {
	PositiveRatio float64 `json:"positive_ratio"`
	NegativeRatio float64 `json:"negative_ratio"`
	SampleSize    int     `json:"sample_size"`
}

// CombinedSentiment is the reliability- and sample-size-weighted merge across
// sources, with neutral mass split evenly. Positive+Negative == 1.
type CombinedSentiment struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

// Fundamentals is a snapshot of company fundamentals. Zero value means unavailable.
type Fundamentals struct {
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
}

// Technicals is a snapshot of price-derived indicators. Zero value means unavailable.
type Technicals struct {
	CurrentPrice float64 `json:"current_price"`
	Volume       float64 `json:"volume"`
	MA20         float64 `json:"ma_20"`
	MA50         float64 `json:"ma_50"`
	MA200        float64 `json:"ma_200"`
	RSI          float64 `json:"rsi"`
	BBUpper      float64 `json:"bb_upper"`
	BBLower      float64 `json:"bb_lower"`
	High52Week   float64 `json:"high_52_week"`
	Low52Week    float64 `json:"low_52_week"`
	YTDReturn    float64 `json:"ytd_return"`
}

// Mention is an inbound message addressed to the bot's account.
type Mention struct {
	ID        string
	AuthorID  string
	Username  string
	Text      string
	CreatedAt time.Time
}

// Candle is a single daily OHLCV bar.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}
