package mention

import (
	"fmt"
	"time"
)

// MarketHours answers whether the exchange is open at a given instant.
// Weekends are always closed; holidays are not modeled.
type MarketHours struct {
	loc       *time.Location
	openHour  int
	openMin   int
	closeHour int
	closeMin  int
}

// NewMarketHours builds market hours for the given IANA timezone.
func NewMarketHours(timezone string, openHour, openMin, closeHour, closeMin int) (*MarketHours, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid market timezone %q: %w", timezone, err)
	}
	return &MarketHours{
		loc:       loc,
		openHour:  openHour,
		openMin:   openMin,
		closeHour: closeHour,
		closeMin:  closeMin,
	}, nil
}

// IsOpen reports whether t falls inside the trading session. Both the open
// and close minute count as open.
func (m *MarketHours) IsOpen(t time.Time) bool {
	local := t.In(m.loc)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	open := time.Date(local.Year(), local.Month(), local.Day(), m.openHour, m.openMin, 0, 0, m.loc)
	close := time.Date(local.Year(), local.Month(), local.Day(), m.closeHour, m.closeMin, 0, 0, m.loc)
	return !local.Before(open) && !local.After(close)
}
