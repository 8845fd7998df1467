package interfaces

import (
	"context"
	"time"

	"market-mention-bot/internal/types"
)

// KeyValue is the durable whole-document store consumed by the pipeline,
// report generator and usage ledger.
type KeyValue interface {
	Put(key string, doc any) error
	Get(key string, out any) error
	Has(key string) bool
}

// NewsSource fetches one feed's articles for a company. Implementations must
// return an empty set (not an error) when there is simply no news; errors are
// reserved for transport-level failure.
type NewsSource interface {
	Name() types.Source
	Fetch(ctx context.Context, company, ticker string) (*types.ArticleSet, error)
}

// MarketData provides fundamentals, technicals and ticker-to-name resolution.
// Empty snapshots are returned when no data is available.
type MarketData interface {
	Fundamentals(ctx context.Context, ticker string) (types.Fundamentals, error)
	Technicals(ctx context.Context, ticker string) (types.Technicals, error)
	CompanyName(ctx context.Context, ticker string) (string, error)
}

// SocialClient is the external posting API: mention polling, reply posting
// and recent-post search.
type SocialClient interface {
	MentionsSince(ctx context.Context, sinceID string, start time.Time) ([]types.Mention, error)
	PostReply(ctx context.Context, inReplyToID, text string) error
	SearchRecent(ctx context.Context, query string, maxResults int) (*types.ArticleSet, error)
}
