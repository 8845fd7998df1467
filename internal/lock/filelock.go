package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrTimeout is returned when the lock could not be acquired in time.
var ErrTimeout = errors.New("timeout waiting for lock")

const pollInterval = 200 * time.Millisecond

// FileLock is a cross-process mutual-exclusion resource built on
// exclusive-create semantics: whoever creates the lock file owns the lock.
// Acquisition is atomic, so a timed-out waiter leaves no partial state.
type FileLock struct {
	path string
}

// New returns a lock backed by the file at path.
func New(path string) *FileLock {
	return &FileLock{path: path}
}

// Acquire blocks until the lock is obtained, the timeout elapses, or ctx is
// cancelled. Callers must pair every successful Acquire with a deferred
// Release so the lock is dropped on all exit paths.
func (l *FileLock) Acquire(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file %s: %w", l.path, err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrTimeout, l.path)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Release drops the lock. Releasing a lock that is not held is a no-op.
func (l *FileLock) Release() {
	_ = os.Remove(l.path)
}
