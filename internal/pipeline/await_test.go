package pipeline

import (
	"context"
	"testing"
	"time"
)

func TestAwaitImmediate(t *testing.T) {
	calls := 0
	ok := Await(context.Background(), time.Hour, time.Hour, func() bool {
		calls++
		return true
	})
	if !ok {
		t.Fatal("Expected immediate success")
	}
	if calls != 1 {
		t.Errorf("Expected a single check, got %d", calls)
	}
}

func TestAwaitEventually(t *testing.T) {
	calls := 0
	ok := Await(context.Background(), 5*time.Millisecond, time.Second, func() bool {
		calls++
		return calls >= 3
	})
	if !ok {
		t.Fatal("Expected eventual success")
	}
	if calls != 3 {
		t.Errorf("Expected 3 checks, got %d", calls)
	}
}

func TestAwaitTimeout(t *testing.T) {
	start := time.Now()
	ok := Await(context.Background(), 5*time.Millisecond, 30*time.Millisecond, func() bool {
		return false
	})
	if ok {
		t.Fatal("Expected timeout")
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Returned before the timeout: %v", elapsed)
	}
}

func TestAwaitContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	ok := Await(ctx, 5*time.Millisecond, time.Hour, func() bool { return false })
	if ok {
		t.Fatal("Expected cancellation to fail the wait")
	}
}
