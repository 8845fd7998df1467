package newsfeed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"market-mention-bot/internal/api"
	"market-mention-bot/internal/types"
)

const yahooNewsURL = "https://query1.finance.yahoo.com/v1/finance/search?q=%s&quotesCount=0&newsCount=%d"

// YahooSource fetches financial press coverage for a ticker.
type YahooSource struct {
	http       *api.Client
	maxResults int
}

// NewYahooSource builds the finance-news source.
func NewYahooSource(maxResults int, timeout time.Duration) *YahooSource {
	return &YahooSource{
		http: api.NewClient(
			api.WithTimeout(timeout),
			api.WithLogging(true),
		),
		maxResults: maxResults,
	}
}

func (y *YahooSource) Name() types.Source { return types.SourceFinance }

type yahooNewsResponse struct {
	News []struct {
		UUID      string `json:"uuid"`
		Title     string `json:"title"`
		Publisher string `json:"publisher"`
	} `json:"news"`
}

// Fetch queries the finance feed, preferring the ticker over the company
// name when available.
func (y *YahooSource) Fetch(ctx context.Context, company, ticker string) (*types.ArticleSet, error) {
	query := ticker
	if query == "" {
		query = company
	}

	resp, err := y.http.GET(ctx, fmt.Sprintf(yahooNewsURL, url.QueryEscape(query), y.maxResults), api.YahooFinanceHeaders())
	if err != nil {
		return nil, fmt.Errorf("finance news for %s failed: %w", query, err)
	}
	var parsed yahooNewsResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, err
	}

	set := types.NewArticleSet()
	for _, item := range parsed.News {
		if item.Title == "" {
			continue
		}
		id := item.UUID
		if id == "" {
			id = uuid.NewString()
		}
		title := CleanText(item.Title)
		set.Add(id, types.RawArticle{
			Title:    title,
			Summary:  strings.ToLower(title),
			Provider: item.Publisher,
		})
	}
	return set, nil
}
