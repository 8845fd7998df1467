package socialobs

import (
	"context"
	"time"

	"market-mention-bot/internal/interfaces"
	"market-mention-bot/internal/logger"
	"market-mention-bot/internal/types"
)

// observableClient wraps a SocialClient with observability (logging & tracing)
type observableClient struct {
	client interfaces.SocialClient
}

// Compile-time interface check
var _ interfaces.SocialClient = (*observableClient)(nil)

// Wrap wraps a social client with observability middleware
func Wrap(client interfaces.SocialClient) interfaces.SocialClient {
	return &observableClient{
		client: client,
	}
}

// MentionsSince fetches mentions with observability
func (oc *observableClient) MentionsSince(ctx context.Context, sinceID string, start time.Time) ([]types.Mention, error) {
	ctx, span := logger.StartSpan(ctx, "social.MentionsSince")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching mentions", "since_id", sinceID, "start", start.Format(time.RFC3339))

	mentions, err := oc.client.MentionsSince(ctx, sinceID, start)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch mentions", err, "since_id", sinceID)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Mentions fetched successfully", "count", len(mentions))
	return mentions, nil
}

// PostReply posts a reply with observability
func (oc *observableClient) PostReply(ctx context.Context, inReplyToID, text string) error {
	ctx, span := logger.StartSpan(ctx, "social.PostReply")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Posting reply",
		"in_reply_to", inReplyToID,
		"length", len(text),
	)

	if err := oc.client.PostReply(ctx, inReplyToID, text); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to post reply", err, "in_reply_to", inReplyToID)
		return err
	}

	logger.InfoSkip(ctx, 1, "Reply posted successfully", "in_reply_to", inReplyToID)
	return nil
}

// SearchRecent searches recent posts with observability
func (oc *observableClient) SearchRecent(ctx context.Context, query string, maxResults int) (*types.ArticleSet, error) {
	ctx, span := logger.StartSpan(ctx, "social.SearchRecent")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Searching recent posts", "query", query, "max_results", maxResults)

	set, err := oc.client.SearchRecent(ctx, query, maxResults)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to search recent posts", err, "query", query)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Search completed", "query", query, "results", set.Len())
	return set, nil
}
