package social

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"market-mention-bot/internal/api"
	"market-mention-bot/internal/types"
	"market-mention-bot/internal/usage"
)

const baseURL = "https://api.twitter.com/2"

// fallbackReset is assumed when a 429 arrives without a usable reset header.
const fallbackReset = 15 * time.Minute

// ErrForbidden is returned when the API rejects a call outright (revoked
// credentials, protected account). Retrying will not help.
var ErrForbidden = errors.New("request forbidden by posting API")

// RateLimitError reports a 429 with the moment the window reopens.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.Reset.Format(time.RFC3339))
}

// Client talks to the posting API v2. Every read is throttled with a local
// token bucket and checked against the monthly usage ledger before it goes
// out, so the client itself keeps the account inside its caps.
type Client struct {
	http        *api.Client
	userID      string
	ledger      *usage.Ledger
	readLimiter *rate.Limiter
	now         func() time.Time
}

// NewClient builds an API client for the account identified by userID,
// authenticating with the given bearer token.
func NewClient(bearerToken, userID string, ledger *usage.Ledger, timeout time.Duration) *Client {
	return &Client{
		http: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(timeout),
			api.WithHeader("Authorization", "Bearer "+bearerToken),
			api.WithLogging(true),
		),
		userID: userID,
		ledger: ledger,
		// One read per 2s sustained, small burst for pagination.
		readLimiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
		now:         time.Now,
	}
}

type tweetObject struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	AuthorID  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

type userObject struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type mentionsResponse struct {
	Data     []tweetObject `json:"data"`
	Includes struct {
		Users []userObject `json:"users"`
	} `json:"includes"`
}

type searchResponse struct {
	Data []tweetObject `json:"data"`
	Meta struct {
		NextToken string `json:"next_token"`
	} `json:"meta"`
}

// MentionsSince fetches mentions of the account newer than sinceID and no
// older than start, oldest first. An empty sinceID means the start time
// alone bounds the scan.
func (c *Client) MentionsSince(ctx context.Context, sinceID string, start time.Time) ([]types.Mention, error) {
	if err := c.beforeRead(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("expansions", "author_id")
	params.Set("user.fields", "username")
	params.Set("tweet.fields", "created_at,author_id,text")
	params.Set("start_time", start.UTC().Format(time.RFC3339))
	if sinceID != "" {
		params.Set("since_id", sinceID)
	}

	resp, err := c.http.GET(ctx, fmt.Sprintf("/users/%s/mentions?%s", c.userID, params.Encode()))
	if err != nil {
		return nil, c.mapError(err)
	}
	var parsed mentionsResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, err
	}

	usernames := make(map[string]string, len(parsed.Includes.Users))
	for _, u := range parsed.Includes.Users {
		usernames[u.ID] = u.Username
	}

	// The API returns newest first; callers want oldest first so replies
	// follow arrival order.
	mentions := make([]types.Mention, 0, len(parsed.Data))
	for i := len(parsed.Data) - 1; i >= 0; i-- {
		t := parsed.Data[i]
		createdAt, err := time.Parse(time.RFC3339, t.CreatedAt)
		if err != nil {
			createdAt = time.Time{}
		}
		mentions = append(mentions, types.Mention{
			ID:        t.ID,
			AuthorID:  t.AuthorID,
			Username:  usernames[t.AuthorID],
			Text:      t.Text,
			CreatedAt: createdAt,
		})
	}
	return mentions, nil
}

type createTweetRequest struct {
	Text  string `json:"text"`
	Reply *struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply,omitempty"`
}

// PostReply posts text as a reply to the given tweet, consuming one unit of
// both posting allowances.
func (c *Client) PostReply(ctx context.Context, inReplyToID, text string) error {
	if err := c.ledger.CheckPost(); err != nil {
		return err
	}

	body := createTweetRequest{Text: text}
	if inReplyToID != "" {
		body.Reply = &struct {
			InReplyToTweetID string `json:"in_reply_to_tweet_id"`
		}{InReplyToTweetID: inReplyToID}
	}

	if _, err := c.http.POST(ctx, "/tweets", body); err != nil {
		return c.mapError(err)
	}
	return c.ledger.RecordPost()
}

// SearchRecent pages through recent public posts matching query, up to
// maxResults, and returns them shaped as articles for the sentiment
// pipeline.
func (c *Client) SearchRecent(ctx context.Context, query string, maxResults int) (*types.ArticleSet, error) {
	set := types.NewArticleSet()
	nextToken := ""

	for set.Len() < maxResults {
		if err := c.beforeRead(ctx); err != nil {
			return nil, err
		}

		pageSize := maxResults - set.Len()
		if pageSize > 100 {
			pageSize = 100
		}
		if pageSize < 10 {
			pageSize = 10
		}

		params := url.Values{}
		params.Set("query", query)
		params.Set("max_results", strconv.Itoa(pageSize))
		params.Set("tweet.fields", "created_at,text")
		if nextToken != "" {
			params.Set("next_token", nextToken)
		}

		resp, err := c.http.GET(ctx, "/tweets/search/recent?"+params.Encode())
		if err != nil {
			return nil, c.mapError(err)
		}
		var parsed searchResponse
		if err := resp.ParseJSON(&parsed); err != nil {
			return nil, err
		}

		for _, t := range parsed.Data {
			if set.Len() >= maxResults {
				break
			}
			set.Add(t.ID, types.RawArticle{
				Title:    t.Text,
				Summary:  strings.ToLower(t.Text),
				Provider: "X",
			})
		}

		nextToken = parsed.Meta.NextToken
		if nextToken == "" || len(parsed.Data) == 0 {
			break
		}
	}
	return set, nil
}

func (c *Client) beforeRead(ctx context.Context) error {
	if err := c.ledger.CheckRead(); err != nil {
		return err
	}
	if err := c.readLimiter.Wait(ctx); err != nil {
		return err
	}
	return c.ledger.RecordRead(1)
}

// mapError converts transport errors into the package's error taxonomy. A
// 429 carries the reset moment from the x-rate-limit-reset header, falling
// back to a conservative window when the header is absent or unreadable.
func (c *Client) mapError(err error) error {
	var se *api.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.StatusCode {
	case 429:
		reset := c.now().Add(fallbackReset)
		if header := se.Headers.Get("x-rate-limit-reset"); header != "" {
			if epoch, perr := strconv.ParseInt(header, 10, 64); perr == nil {
				reset = time.Unix(epoch, 0)
			}
		}
		return &RateLimitError{Reset: reset}
	case 403:
		return fmt.Errorf("%w: %s", ErrForbidden, se.Body)
	default:
		return err
	}
}
