package mention

import (
	"context"
	"errors"
	"strings"
	"time"

	"market-mention-bot/internal/interfaces"
	"market-mention-bot/internal/lock"
	"market-mention-bot/internal/logger"
	"market-mention-bot/internal/social"
	"market-mention-bot/internal/types"
)

// Subscription prompts posted to unauthorized users.
const (
	MsgMarketClosed       = "Sorry, analysis is only available during market hours (9:30am-4:00pm ET, Mon-Fri)."
	MsgMarketClosedUnauth = MsgMarketClosed + " Subscribe to get access to market analysis!"
	MsgMarketOpenUnauth   = "Subscribe to our plan or DM us for a free trial to access market analysis during open hours!"
)

// minRateLimitWait is the floor applied to any 429 backoff so a stale reset
// header never causes a hot retry loop.
const minRateLimitWait = 30 * time.Second

// Params holds the loop's timing knobs.
type Params struct {
	Cycle         time.Duration
	WindowOpen    time.Duration
	WindowClosed  time.Duration
	MaxMentionAge time.Duration
	ReplyPace     time.Duration
	ErrorCooldown time.Duration
	LockTimeout   time.Duration
}

// Loop is the bot's outer control flow: scan mentions, decide per mention,
// reply, sleep, repeat. A fetched batch is processed oldest first so replies
// follow arrival order, and the since-id watermark only ever moves forward.
type Loop struct {
	social   interfaces.SocialClient
	pipeline interfaces.Pipeline
	reporter interfaces.Reporter
	hours    *MarketHours
	lock     *lock.FileLock
	params   Params

	authorized map[string]bool

	lastMentionID string
	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) error
}

// NewLoop wires a mention loop. authorizedUsers and promoAccounts are
// usernames without the @ prefix; both get full access.
func NewLoop(
	socialClient interfaces.SocialClient,
	pipeline interfaces.Pipeline,
	reporter interfaces.Reporter,
	hours *MarketHours,
	fileLock *lock.FileLock,
	params Params,
	authorizedUsers, promoAccounts []string,
) *Loop {
	authorized := make(map[string]bool, len(authorizedUsers)+len(promoAccounts))
	for _, u := range authorizedUsers {
		authorized[strings.ToLower(u)] = true
	}
	for _, u := range promoAccounts {
		authorized[strings.ToLower(u)] = true
	}
	return &Loop{
		social:     socialClient,
		pipeline:   pipeline,
		reporter:   reporter,
		hours:      hours,
		lock:       fileLock,
		params:     params,
		authorized: authorized,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// IsAuthorized reports whether the username gets full analysis access.
func (l *Loop) IsAuthorized(username string) bool {
	return l.authorized[strings.ToLower(username)]
}

// Run scans until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	logger.Info(ctx, "Starting mention monitoring")
	for {
		wait := l.RunCycle(ctx)
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// RunCycle performs one scan and returns how long to sleep before the next.
func (l *Loop) RunCycle(ctx context.Context) time.Duration {
	now := l.now()
	marketOpen := l.hours.IsOpen(now)
	window := l.params.WindowClosed
	if marketOpen {
		window = l.params.WindowOpen
	}

	logger.Info(ctx, "Scanning mentions",
		"market_open", marketOpen,
		"window_minutes", int(window.Minutes()),
		"since_id", l.lastMentionID)

	mentions, err := l.social.MentionsSince(ctx, l.lastMentionID, now.Add(-window))
	if err != nil {
		return l.waitFor(ctx, err)
	}

	for _, m := range mentions {
		if err := l.handleMention(ctx, m, marketOpen); err != nil {
			var rle *social.RateLimitError
			if errors.As(err, &rle) {
				// Stop working the batch; the window has to reopen first.
				l.advanceWatermark(mentions)
				return l.waitFor(ctx, err)
			}
			logger.ErrorWithErr(ctx, "Failed to process mention", err,
				"mention_id", m.ID, "username", m.Username)
		}
	}

	l.advanceWatermark(mentions)
	return l.params.Cycle
}

// advanceWatermark moves the since-id cursor to the newest fetched mention.
// Mentions arrive oldest first, so the last entry is the newest.
func (l *Loop) advanceWatermark(mentions []types.Mention) {
	if len(mentions) > 0 {
		l.lastMentionID = mentions[len(mentions)-1].ID
	}
}

// waitFor maps a scan or post error to the cooldown before the next cycle.
func (l *Loop) waitFor(ctx context.Context, err error) time.Duration {
	var rle *social.RateLimitError
	if errors.As(err, &rle) {
		wait := time.Until(rle.Reset)
		if wait < minRateLimitWait {
			wait = minRateLimitWait
		}
		logger.Backoff(ctx, int(wait.Seconds()), rle.Reset)
		return wait
	}
	logger.ErrorWithErr(ctx, "Mention scan failed, cooling down", err,
		"cooldown_seconds", int(l.params.ErrorCooldown.Seconds()))
	return l.params.ErrorCooldown
}

// handleMention decides on and posts the reply for one mention, holding the
// cross-process lock for the duration so concurrent bot processes cannot
// double-reply.
func (l *Loop) handleMention(ctx context.Context, m types.Mention, marketOpen bool) error {
	if err := l.lock.Acquire(ctx, l.params.LockTimeout); err != nil {
		return err
	}
	defer l.lock.Release()

	if m.CreatedAt.IsZero() {
		logger.Warn(ctx, "Mention has no timestamp, skipping", "mention_id", m.ID)
		return nil
	}
	if age := l.now().Sub(m.CreatedAt); age > l.params.MaxMentionAge {
		logger.Debug(ctx, "Mention too old, skipping",
			"mention_id", m.ID, "age_minutes", age.Minutes())
		return nil
	}
	if m.Username == "" {
		logger.Warn(ctx, "Mention author unknown, skipping", "mention_id", m.ID)
		return nil
	}

	ticker := ExtractTicker(m.Text)
	if ticker == "" {
		logger.Debug(ctx, "No ticker in mention, skipping",
			"mention_id", m.ID, "username", m.Username)
		return nil
	}

	text, kind := l.respond(ctx, ticker, m, marketOpen)
	if text == "" {
		return nil
	}

	if err := l.social.PostReply(ctx, m.ID, text); err != nil {
		return err
	}
	logger.Reply(ctx, m.ID, m.Username, kind, "ticker", ticker)

	return l.sleep(ctx, l.params.ReplyPace)
}

// respond picks the reply text for a mention. Authorized users get the full
// analysis around the clock, or silence when the pipeline cannot produce
// fresh data. Everyone else gets the subscription prompt matching the
// session state.
func (l *Loop) respond(ctx context.Context, ticker string, m types.Mention, marketOpen bool) (text, kind string) {
	if !l.IsAuthorized(m.Username) {
		if marketOpen {
			return MsgMarketOpenUnauth, "open-unauth"
		}
		return MsgMarketClosedUnauth, "closed-unauth"
	}

	company, err := l.pipeline.Ensure(ctx, ticker, "")
	if err != nil {
		logger.ErrorWithErr(ctx, "Pipeline failed, not replying", err,
			"ticker", ticker, "username", m.Username)
		return "", ""
	}
	analysis, err := l.reporter.Generate(ctx, company, ticker)
	if err != nil {
		logger.ErrorWithErr(ctx, "Report generation failed, not replying", err,
			"ticker", ticker, "company", company)
		return "", ""
	}
	return analysis, "authorized"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
