package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"market-mention-bot/internal/store"
)

type memKV struct {
	docs map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{docs: make(map[string][]byte)}
}

func (m *memKV) Put(key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.docs[key] = data
	return nil
}

func (m *memKV) Get(key string, out any) error {
	data, ok := m.docs[key]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	return json.Unmarshal(data, out)
}

func (m *memKV) Has(key string) bool {
	_, ok := m.docs[key]
	return ok
}

func TestRecordAndCurrent(t *testing.T) {
	l := NewLedger(newMemKV(), Caps{Read: 100, PostUser: 10, PostApp: 50})

	if err := l.RecordRead(3); err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	if err := l.RecordPost(); err != nil {
		t.Fatalf("RecordPost failed: %v", err)
	}

	c, err := l.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if c.Read != 3 || c.PostUser != 1 || c.PostApp != 1 {
		t.Errorf("Unexpected counters: %+v", c)
	}
}

func TestCountersPersistAcrossLedgers(t *testing.T) {
	kv := newMemKV()

	first := NewLedger(kv, Caps{})
	if err := first.RecordRead(7); err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}

	second := NewLedger(kv, Caps{})
	c, err := second.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if c.Read != 7 {
		t.Errorf("Expected persisted read count 7, got %d", c.Read)
	}
}

func TestCheckReadCap(t *testing.T) {
	l := NewLedger(newMemKV(), Caps{Read: 2})

	for i := 0; i < 2; i++ {
		if err := l.CheckRead(); err != nil {
			t.Fatalf("CheckRead %d failed: %v", i, err)
		}
		if err := l.RecordRead(1); err != nil {
			t.Fatalf("RecordRead failed: %v", err)
		}
	}

	if err := l.CheckRead(); !errors.Is(err, ErrCapExceeded) {
		t.Errorf("Expected ErrCapExceeded at the cap, got %v", err)
	}
}

func TestCheckPostCaps(t *testing.T) {
	l := NewLedger(newMemKV(), Caps{PostUser: 1, PostApp: 100})

	if err := l.CheckPost(); err != nil {
		t.Fatalf("CheckPost failed: %v", err)
	}
	if err := l.RecordPost(); err != nil {
		t.Fatalf("RecordPost failed: %v", err)
	}
	if err := l.CheckPost(); !errors.Is(err, ErrCapExceeded) {
		t.Errorf("Expected ErrCapExceeded on the per-user cap, got %v", err)
	}
}

func TestZeroCapDisablesCheck(t *testing.T) {
	l := NewLedger(newMemKV(), Caps{})
	if err := l.RecordRead(1000000); err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	if err := l.CheckRead(); err != nil {
		t.Errorf("Expected zero cap to allow reads, got %v", err)
	}
}

func TestMonthRollover(t *testing.T) {
	l := NewLedger(newMemKV(), Caps{Read: 5})
	current := time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	if err := l.RecordRead(5); err != nil {
		t.Fatalf("RecordRead failed: %v", err)
	}
	if err := l.CheckRead(); !errors.Is(err, ErrCapExceeded) {
		t.Fatalf("Expected cap hit in January, got %v", err)
	}

	current = time.Date(2026, 2, 1, 0, 5, 0, 0, time.UTC)
	if err := l.CheckRead(); err != nil {
		t.Errorf("Expected fresh allowance in February, got %v", err)
	}
	c, err := l.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if c.Read != 0 {
		t.Errorf("Expected February counters to start at zero, got %+v", c)
	}
}
