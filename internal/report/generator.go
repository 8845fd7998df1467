package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"market-mention-bot/internal/interfaces"
	"market-mention-bot/internal/logger"
	"market-mention-bot/internal/politics"
	"market-mention-bot/internal/sentiment"
	"market-mention-bot/internal/store"
	"market-mention-bot/internal/types"
)

// Price level offsets relative to the current price.
const (
	resistanceFactor       = 1.015
	supportPrimaryFactor   = 0.985
	supportSecondaryFactor = 0.970
	entryLongFactor        = 1.008
	targetLongFactor       = 1.020
	stopLongFactor         = 0.985
	entryShortFactor       = 0.992
	targetShortFactor      = 0.975
	stopShortFactor        = 1.006
)

const sampleTitleLimit = 60

type cacheEntry struct {
	at   time.Time
	text string
}

// Generator renders the posted analysis for a company from the stored news,
// sentiment and risk documents plus a live market snapshot. Results are
// cached per ticker for a short TTL; within the TTL repeated requests get
// the identical text, which keeps replies consistent while a ticker is being
// mentioned in bursts.
type Generator struct {
	kv     interfaces.KeyValue
	market interfaces.MarketData
	scorer *sentiment.Scorer
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

// NewGenerator builds a report generator with the given cache TTL.
func NewGenerator(kv interfaces.KeyValue, market interfaces.MarketData, scorer *sentiment.Scorer, ttl time.Duration) *Generator {
	return &Generator{
		kv:     kv,
		market: market,
		scorer: scorer,
		ttl:    ttl,
		cache:  make(map[string]cacheEntry),
		now:    time.Now,
	}
}

func cacheKey(company, ticker string) string {
	if ticker != "" {
		return ticker
	}
	return strings.ToLower(company)
}

// Generate returns the analysis text for a company, serving from cache when
// a fresh entry exists.
func (g *Generator) Generate(ctx context.Context, company, ticker string) (string, error) {
	key := cacheKey(company, ticker)

	g.mu.Lock()
	if entry, ok := g.cache[key]; ok && g.now().Sub(entry.at) < g.ttl {
		g.mu.Unlock()
		logger.Debug(ctx, "Serving cached analysis", "key", key)
		return entry.text, nil
	}
	g.mu.Unlock()

	text, err := g.render(ctx, company, ticker)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.cache[key] = cacheEntry{at: g.now(), text: text}
	g.mu.Unlock()
	return text, nil
}

func (g *Generator) render(ctx context.Context, company, ticker string) (string, error) {
	if ticker == "" {
		return "", errors.New("no ticker provided for analysis")
	}

	fundamentals, err := g.market.Fundamentals(ctx, ticker)
	if err != nil {
		logger.Warn(ctx, "Fundamentals unavailable", "ticker", ticker, "error", err.Error())
	}
	technicals, err := g.market.Technicals(ctx, ticker)
	if err != nil {
		logger.Warn(ctx, "Technicals unavailable", "ticker", ticker, "error", err.Error())
	}

	articles := g.mergedNews(company)
	scored := g.scorer.Score(articles)
	risk := g.politicalRisk(company)

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 %s Analysis for Day Trading: 24h Opportunity? 📈\n", company)
	fmt.Fprintf(&b, "Date and Time: %s\n\n", g.now().Format("January 02, 2006, 15:04 MST"))
	b.WriteString("🔍 Market Sentiment (Last 24h)\n")

	if scored.Count > 0 {
		pos, neg := splitNeutral(scored.PositivePercent, scored.NegativePercent)
		fmt.Fprintf(&b, "Sentiment towards %s is %s\n\n", company, scored.Overall)
		b.WriteString("📊 Sentiment statistics: \n")
		fmt.Fprintf(&b, "-Positive: %.1f%% \n", pos)
		fmt.Fprintf(&b, "-Negative: %.1f%% \n\n", neg)
		b.WriteString("🗞 News Sample: \n")
		for _, article := range sampleArticles(scored.Articles, 2) {
			fmt.Fprintf(&b, "🧙‍♂ %s... (%s)\n", truncate(article.Title, sampleTitleLimit), article.Provider)
		}
	} else {
		fmt.Fprintf(&b, "\nLimited news data available for %s.\n\n", company)
	}

	b.WriteString("Summary: Market conditions suggest exploitable volatility.\n\n")
	fmt.Fprintf(&b, "🌪 Political Uncertainty: %s\n\n", politics.Band(risk))

	b.WriteString("✅ Technical Analysis (Intraday)\n")
	if technicals.CurrentPrice > 0 {
		price := technicals.CurrentPrice
		resistance := price * resistanceFactor
		supportPrimary := price * supportPrimaryFactor
		supportSecondary := price * supportSecondaryFactor

		fmt.Fprintf(&b, "Current Price: $%.2f\n", price)
		fmt.Fprintf(&b, "Volume: %s (vs average)\n", formatVolume(technicals.Volume))
		b.WriteString("\n\nKey Levels:\n")
		fmt.Fprintf(&b, "🛡️ Resistance: $%.2f\n", resistance)
		fmt.Fprintf(&b, "🛡️ Support: $%.2f (primary), $%.2f (secondary)\n", supportPrimary, supportSecondary)

		b.WriteString("\n\nIndicators:\n")
		fmt.Fprintf(&b, "RSI (15 min): %.0f - %s\n\n", technicals.RSI, rsiLabel(technicals.RSI))
		fmt.Fprintf(&b, "Bollinger Bands: %s\n", bollingerPosition(technicals))

		if price > technicals.MA20 {
			b.WriteString("Pattern: Bullish momentum above 20-day MA\n")
		} else {
			b.WriteString("Pattern: Bearish pressure below 20-day MA\n\n")
		}

		b.WriteString("Signals:\n")
		if price > technicals.MA50 {
			fmt.Fprintf(&b, "🟢 Bullish: Potential rally to $%.2f if momentum holds\n\n", resistance)
		} else {
			fmt.Fprintf(&b, "🔴 Bearish: Risk of decline to $%.2f if support breaks\n\n", supportSecondary)
		}
	}

	b.WriteString("📊 Real-time Data\n")
	if fundamentals != (types.Fundamentals{}) {
		fmt.Fprintf(&b, "Market Cap: %s\n", formatLargeNumber(fundamentals.MarketCap))
		fmt.Fprintf(&b, "P/E Ratio: %s\n", formatRatio(fundamentals.PERatio))
		fmt.Fprintf(&b, "Sector: %s\n", orNA(fundamentals.Sector))
	}
	if technicals.CurrentPrice > 0 {
		fmt.Fprintf(&b, "52-week High: $%.2f\n", technicals.High52Week)
		fmt.Fprintf(&b, "52-week Low: $%.2f\n", technicals.Low52Week)
		fmt.Fprintf(&b, "YTD Return: %.1f%%\n\n", technicals.YTDReturn)
	}

	b.WriteString("🛠️ Strategies for Next 24h\n")
	if technicals.CurrentPrice > 0 {
		price := technicals.CurrentPrice
		b.WriteString("Bullish:\n")
		fmt.Fprintf(&b, "Entry: Buy if breaks $%.2f with volume\n", price*entryLongFactor)
		fmt.Fprintf(&b, "Target: $%.2f\n", price*targetLongFactor)
		fmt.Fprintf(&b, "Stop-loss: $%.2f\n", price*stopLongFactor)
		b.WriteString("Bearish:\n")
		fmt.Fprintf(&b, "Entry: Short if drops below $%.2f\n", price*entryShortFactor)
		fmt.Fprintf(&b, "Target: $%.2f\n", price*targetShortFactor)
		fmt.Fprintf(&b, "Stop-loss: $%.2f\n", price*stopShortFactor)
	}
	b.WriteString("Monitor: News and volume in real-time.\n\n")

	b.WriteString("⚠️ Risks\n")
	fmt.Fprintf(&b, "Volatility: Sharp movements common in $%s\n\n", ticker)
	b.WriteString("News: Company announcements can change direction\n\n")
	b.WriteString("Disclaimer: For informational purposes only. Day trading is high risk.")

	return b.String(), nil
}

// mergedNews concatenates every stored feed for the company in aggregation
// order. Missing feeds are skipped.
func (g *Generator) mergedNews(company string) []types.RawArticle {
	var merged []types.RawArticle
	for _, src := range types.Sources {
		var set types.ArticleSet
		if err := g.kv.Get(store.NewsKey(src, company), &set); err != nil {
			continue
		}
		merged = append(merged, set.List()...)
	}
	return merged
}

func (g *Generator) politicalRisk(company string) float64 {
	risks := make(map[string]float64)
	if err := g.kv.Get(store.KeyPoliticalRisk, &risks); err != nil {
		return politics.DefaultScore
	}
	for name, score := range risks {
		if strings.EqualFold(name, company) {
			return score
		}
	}
	return politics.DefaultScore
}

// splitNeutral distributes the neutral share of the percentages evenly
// between positive and negative, normalizing when float error pushes the sum
// off 100.
func splitNeutral(posPct, negPct float64) (float64, float64) {
	neutral := 100 - posPct - negPct
	pos := posPct + neutral/2
	neg := negPct + neutral/2
	if total := pos + neg; math.Abs(total-100) > 0.01 {
		pos = pos * 100 / total
		neg = neg * 100 / total
	}
	return pos, neg
}

func sampleArticles(articles []sentiment.ScoredArticle, n int) []sentiment.ScoredArticle {
	if len(articles) <= n {
		return articles
	}
	return articles[:n]
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func rsiLabel(rsi float64) string {
	switch {
	case rsi > 70:
		return "Overbought"
	case rsi < 30:
		return "Oversold"
	default:
		return "Neutral"
	}
}

func bollingerPosition(t types.Technicals) string {
	switch {
	case t.BBUpper > 0 && t.CurrentPrice > t.BBUpper:
		return "Above upper band"
	case t.BBLower > 0 && t.CurrentPrice < t.BBLower:
		return "Below lower band"
	default:
		return "Within bands"
	}
}

func formatLargeNumber(v float64) string {
	switch {
	case v <= 0:
		return "N/A"
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func formatRatio(v float64) string {
	if v <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}

func formatVolume(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	// Insert thousands separators.
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	pre := n % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
