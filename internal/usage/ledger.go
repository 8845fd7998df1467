package usage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"market-mention-bot/internal/interfaces"
	"market-mention-bot/internal/store"
)

// ErrCapExceeded is returned when a recorded call category has reached its
// monthly ceiling.
var ErrCapExceeded = errors.New("monthly API usage cap exceeded")

// Counters holds one month's call counts per billing category.
type Counters struct {
	Read     int `json:"read"`
	PostUser int `json:"post_user"`
	PostApp  int `json:"post_app"`
}

// Caps are the monthly ceilings per category. A zero cap disables the check
// for that category.
type Caps struct {
	Read     int
	PostUser int
	PostApp  int
}

// Ledger tracks external API consumption per calendar month so the bot can
// stop calling before the provider starts rejecting. Counts persist across
// restarts; the month key rolls over naturally because it is derived from the
// wall clock at record time.
type Ledger struct {
	kv   interfaces.KeyValue
	caps Caps

	mu  sync.Mutex
	now func() time.Time
}

// NewLedger returns a ledger persisted under the given store.
func NewLedger(kv interfaces.KeyValue, caps Caps) *Ledger {
	return &Ledger{kv: kv, caps: caps, now: time.Now}
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

func (l *Ledger) load() (map[string]Counters, error) {
	ledger := make(map[string]Counters)
	err := l.kv.Get(store.KeyUsageLedger, &ledger)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return ledger, nil
}

// Current returns this month's counters. A month with no recorded calls
// reads as zero.
func (l *Ledger) Current() (Counters, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ledger, err := l.load()
	if err != nil {
		return Counters{}, err
	}
	return ledger[monthKey(l.now())], nil
}

// RecordRead increments the read counter and persists it.
func (l *Ledger) RecordRead(n int) error {
	return l.record(func(c *Counters) { c.Read += n })
}

// RecordPost increments both posting counters and persists them. Every post
// consumes one unit of the per-user and one unit of the per-app allowance.
func (l *Ledger) RecordPost() error {
	return l.record(func(c *Counters) {
		c.PostUser++
		c.PostApp++
	})
}

func (l *Ledger) record(apply func(*Counters)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ledger, err := l.load()
	if err != nil {
		return err
	}
	key := monthKey(l.now())
	c := ledger[key]
	apply(&c)
	ledger[key] = c
	if err := l.kv.Put(store.KeyUsageLedger, ledger); err != nil {
		return fmt.Errorf("failed to persist usage ledger: %w", err)
	}
	return nil
}

// CheckRead reports whether another read call is allowed this month.
func (l *Ledger) CheckRead() error {
	c, err := l.Current()
	if err != nil {
		return err
	}
	if l.caps.Read > 0 && c.Read >= l.caps.Read {
		return fmt.Errorf("%w: read %d/%d", ErrCapExceeded, c.Read, l.caps.Read)
	}
	return nil
}

// CheckPost reports whether another post is allowed this month. Both the
// per-user and per-app ceilings must have headroom.
func (l *Ledger) CheckPost() error {
	c, err := l.Current()
	if err != nil {
		return err
	}
	if l.caps.PostUser > 0 && c.PostUser >= l.caps.PostUser {
		return fmt.Errorf("%w: post_user %d/%d", ErrCapExceeded, c.PostUser, l.caps.PostUser)
	}
	if l.caps.PostApp > 0 && c.PostApp >= l.caps.PostApp {
		return fmt.Errorf("%w: post_app %d/%d", ErrCapExceeded, c.PostApp, l.caps.PostApp)
	}
	return nil
}
