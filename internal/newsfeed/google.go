package newsfeed

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"

	"market-mention-bot/internal/logger"
	"market-mention-bot/internal/types"
)

const googleNewsRSS = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"

// GoogleSource scrapes the Google News RSS feed for a company.
type GoogleSource struct {
	maxResults int
	timeout    time.Duration
}

// NewGoogleSource builds the general-news source.
func NewGoogleSource(maxResults int, timeout time.Duration) *GoogleSource {
	return &GoogleSource{maxResults: maxResults, timeout: timeout}
}

func (g *GoogleSource) Name() types.Source { return types.SourceGeneral }

// Fetch scrapes up to maxResults items for the company query.
func (g *GoogleSource) Fetch(ctx context.Context, company, ticker string) (*types.ArticleSet, error) {
	set := types.NewArticleSet()

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com"),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(g.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnXML("//rss/channel/item", func(e *colly.XMLElement) {
		if set.Len() >= g.maxResults {
			return
		}
		title := CleanText(e.ChildText("title"))
		if title == "" || title == "No content" {
			return
		}
		id := e.ChildText("guid")
		if id == "" {
			id = uuid.NewString()
		}
		set.Add(id, types.RawArticle{
			Title:    title,
			Summary:  CleanText(e.ChildText("description")),
			Provider: e.ChildText("source"),
		})
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = err
		logger.ErrorWithErr(ctx, "Google News scrape error", err, "url", r.Request.URL.String())
	})

	feedURL := fmt.Sprintf(googleNewsRSS, url.QueryEscape(company))
	if err := c.Visit(feedURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", feedURL, err)
	}
	c.Wait()

	if scrapeErr != nil && set.Len() == 0 {
		return nil, scrapeErr
	}
	return set, nil
}
