package sentiment

import (
	"strings"

	"market-mention-bot/internal/types"
)

// Overall article-level sentiment labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
	LabelNoData   = "no data"
)

// ScoredArticle is one article with its classification, kept for report samples.
type ScoredArticle struct {
	Title     string
	Sentiment string
	Provider  string
}

// Result aggregates keyword-based sentiment over a batch of articles.
// The zero-ish LabelNoData result is the canonical empty state: callers must
// check Count instead of treating missing news as an error.
type Result struct {
	Overall         string
	Count           int
	PositiveCount   int
	NegativeCount   int
	PositivePercent float64
	NegativePercent float64
	Articles        []ScoredArticle
}

// Scorer classifies articles by counting keyword occurrences in title+summary.
type Scorer struct {
	positive []string
	negative []string
}

// NewScorer creates a scorer with the given keyword lists; empty lists fall
// back to the built-in dictionaries.
func NewScorer(positive, negative []string) *Scorer {
	if len(positive) == 0 {
		positive = DefaultPositiveKeywords()
	}
	if len(negative) == 0 {
		negative = DefaultNegativeKeywords()
	}
	return &Scorer{positive: lowerAll(positive), negative: lowerAll(negative)}
}

// Score classifies every article and aggregates the counts. A nil or empty
// input returns the canonical no-data result.
func (s *Scorer) Score(articles []types.RawArticle) Result {
	if len(articles) == 0 {
		return Result{Overall: LabelNoData, Articles: []ScoredArticle{}}
	}

	res := Result{Articles: make([]ScoredArticle, 0, len(articles))}
	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + a.Summary)
		pos := countMatches(text, s.positive)
		neg := countMatches(text, s.negative)

		label := LabelNeutral
		switch {
		case pos > neg:
			label = LabelPositive
			res.PositiveCount++
		case neg > pos:
			label = LabelNegative
			res.NegativeCount++
		}
		res.Articles = append(res.Articles, ScoredArticle{
			Title:     a.Title,
			Sentiment: label,
			Provider:  a.Provider,
		})
	}

	res.Count = len(res.Articles)
	res.PositivePercent = float64(res.PositiveCount) * 100 / float64(res.Count)
	res.NegativePercent = float64(res.NegativeCount) * 100 / float64(res.Count)

	switch {
	case res.PositiveCount > res.NegativeCount:
		res.Overall = LabelPositive
	case res.NegativeCount > res.PositiveCount:
		res.Overall = LabelNegative
	default:
		res.Overall = LabelNeutral
	}
	return res
}

// Metrics converts a scoring result into the per-source ratios stored for
// aggregation, rounded to two significant figures.
func (r Result) Metrics() types.SourceSentiment {
	return types.SourceSentiment{
		PositiveRatio: SigFig(r.PositivePercent/100, 2),
		NegativeRatio: SigFig(r.NegativePercent/100, 2),
		SampleSize:    r.Count,
	}
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
