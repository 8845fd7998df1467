package mention

import (
	"testing"
	"time"
)

func nyseHours(t *testing.T) *MarketHours {
	t.Helper()
	h, err := NewMarketHours("America/New_York", 9, 30, 16, 0)
	if err != nil {
		t.Fatalf("NewMarketHours failed: %v", err)
	}
	return h
}

func TestIsOpen(t *testing.T) {
	h := nyseHours(t)
	ny, _ := time.LoadLocation("America/New_York")

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"weekday mid-session", time.Date(2026, 8, 26, 12, 0, 0, 0, ny), true},
		{"at the open", time.Date(2026, 8, 26, 9, 30, 0, 0, ny), true},
		{"at the close", time.Date(2026, 8, 26, 16, 0, 0, 0, ny), true},
		{"before the open", time.Date(2026, 8, 26, 9, 29, 59, 0, ny), false},
		{"after the close", time.Date(2026, 8, 26, 16, 0, 1, 0, ny), false},
		{"saturday", time.Date(2026, 8, 29, 12, 0, 0, 0, ny), false},
		{"sunday", time.Date(2026, 8, 30, 12, 0, 0, 0, ny), false},
	}
	for _, c := range cases {
		if got := h.IsOpen(c.at); got != c.want {
			t.Errorf("%s: IsOpen = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestIsOpenConvertsTimezone(t *testing.T) {
	h := nyseHours(t)
	// 15:00 UTC in August is 11:00 in New York.
	at := time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC)
	if !h.IsOpen(at) {
		t.Error("Expected 15:00 UTC on a summer weekday to be open")
	}
	// 02:00 UTC is 22:00 the previous evening in New York.
	at = time.Date(2026, 8, 27, 2, 0, 0, 0, time.UTC)
	if h.IsOpen(at) {
		t.Error("Expected 02:00 UTC to be closed")
	}
}

func TestNewMarketHoursBadTimezone(t *testing.T) {
	if _, err := NewMarketHours("Not/AZone", 9, 30, 16, 0); err == nil {
		t.Error("Expected an error for an unknown timezone")
	}
}
