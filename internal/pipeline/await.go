package pipeline

import (
	"context"
	"time"
)

// Await polls check at the given interval until it reports true. It returns
// false when the timeout elapses or ctx is cancelled first. The condition is
// evaluated once immediately so an already-satisfied check never waits.
func Await(ctx context.Context, interval, timeout time.Duration, check func() bool) bool {
	if check() {
		return true
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if check() {
				return true
			}
			if time.Now().After(deadline) {
				return false
			}
		}
	}
}
