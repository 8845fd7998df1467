package politics

import (
	"math"
	"sort"
	"strings"

	"market-mention-bot/internal/types"
)

// DefaultScore is assumed when no coverage exists to judge a company by.
const DefaultScore = 5.0

// DefaultKeywords returns the political and regulatory terms scanned for in
// news coverage. All entries are lowercase.
func DefaultKeywords() []string {
	return []string{
		"tariff", "sanction", "sanctions", "regulation", "regulatory",
		"antitrust", "subpoena", "lawsuit", "legislation", "congress",
		"senate", "white house", "executive order", "ban", "export control",
		"investigation", "probe", "fine", "fined", "doj", "ftc", "sec",
		"government", "policy", "election", "lobbying", "geopolitical",
		"trade war", "national security",
	}
}

// Analyzer estimates a company's exposure to political and regulatory risk
// from news text. Scores run 0 through 10, higher meaning more exposed.
type Analyzer struct {
	keywords []string
}

// NewAnalyzer returns an analyzer using the given keywords, or the default
// list when nil or empty.
func NewAnalyzer(keywords []string) *Analyzer {
	if len(keywords) == 0 {
		keywords = DefaultKeywords()
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Analyzer{keywords: lowered}
}

// Score rates the articles 0 through 10 and returns the distinct keywords
// that contributed. With no articles there is nothing to judge by, so the
// moderate default applies.
func (a *Analyzer) Score(articles []types.RawArticle) (float64, []string) {
	if len(articles) == 0 {
		return DefaultScore, nil
	}

	totalHits := 0
	hitArticles := 0
	seen := make(map[string]bool)
	for _, art := range articles {
		text := strings.ToLower(art.Title + " " + art.Summary)
		hits := 0
		for _, kw := range a.keywords {
			if n := strings.Count(text, kw); n > 0 {
				hits += n
				seen[kw] = true
			}
		}
		if hits > 0 {
			hitArticles++
		}
		totalHits += hits
	}

	// Exposure is how widely political coverage spreads across articles,
	// intensity how dense the language is within them. Three hits per
	// article saturates intensity.
	exposure := float64(hitArticles) / float64(len(articles))
	intensity := math.Min(1, float64(totalHits)/(3*float64(len(articles))))
	score := math.Round((0.6*exposure+0.4*intensity)*100) / 10

	factors := make([]string, 0, len(seen))
	for kw := range seen {
		factors = append(factors, kw)
	}
	sort.Strings(factors)
	return score, factors
}

// Band names the risk level a score falls into.
func Band(score float64) string {
	switch {
	case score <= 2:
		return "Very Low"
	case score <= 4:
		return "Low"
	case score <= 6:
		return "Moderate"
	case score <= 8:
		return "High"
	default:
		return "Very High"
	}
}
