package newsfeed

import (
	"context"
	"fmt"

	"market-mention-bot/internal/interfaces"
	"market-mention-bot/internal/types"
)

// MicroblogSource treats recent public posts about a company as a news feed.
// It rides on the same social client (and usage ledger) the mention loop
// uses.
type MicroblogSource struct {
	client     interfaces.SocialClient
	maxResults int
}

// NewMicroblogSource builds the microblog source.
func NewMicroblogSource(client interfaces.SocialClient, maxResults int) *MicroblogSource {
	return &MicroblogSource{client: client, maxResults: maxResults}
}

func (m *MicroblogSource) Name() types.Source { return types.SourceMicroblog }

// Fetch searches recent posts mentioning the company or its ticker.
func (m *MicroblogSource) Fetch(ctx context.Context, company, ticker string) (*types.ArticleSet, error) {
	query := fmt.Sprintf("%q -is:retweet lang:en", company)
	if ticker != "" {
		query = fmt.Sprintf("(%q OR $%s) -is:retweet lang:en", company, ticker)
	}
	return m.client.SearchRecent(ctx, query, m.maxResults)
}
