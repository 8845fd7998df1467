package marketdata

import (
	"math"
	"testing"
	"time"

	"market-mention-bot/internal/types"
)

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	if got := SMA(closes, 3); got != 4 {
		t.Errorf("SMA(3) = %v, want 4", got)
	}
	if got := SMA(closes, 5); got != 3 {
		t.Errorf("SMA(5) = %v, want 3", got)
	}
	if got := SMA(closes, 6); !math.IsNaN(got) {
		t.Errorf("Expected NaN for insufficient history, got %v", got)
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	if got := RSI(closes, 14); got != 100 {
		t.Errorf("Expected RSI 100 for monotone gains, got %v", got)
	}
}

func TestRSIBalanced(t *testing.T) {
	closes := []float64{10}
	for i := 0; i < 7; i++ {
		closes = append(closes, closes[len(closes)-1]+1)
		closes = append(closes, closes[len(closes)-1]-1)
	}
	got := RSI(closes, 14)
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("Expected RSI 50 for balanced moves, got %v", got)
	}
}

func TestBollinger(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	mid, up, low := Bollinger(closes, 20, 2)
	if mid != 100 || up != 100 || low != 100 {
		t.Errorf("Expected flat bands at 100, got %v/%v/%v", mid, up, low)
	}
}

func candleSeries(n int, start time.Time, price func(i int) float64) []types.Candle {
	candles := make([]types.Candle, n)
	for i := range candles {
		p := price(i)
		candles[i] = types.Candle{
			Ts:    start.AddDate(0, 0, i).Unix(),
			Open:  p,
			High:  p * 1.01,
			Low:   p * 0.99,
			Close: p,
			Vol:   1000,
		}
	}
	return candles
}

func TestBuildTechnicals(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(-1, 0, 0)
	candles := candleSeries(250, start, func(i int) float64 { return 100 + float64(i)*0.1 })

	tech := BuildTechnicals(candles, now)
	want := 100 + 249*0.1
	if math.Abs(tech.CurrentPrice-want) > 1e-9 {
		t.Errorf("CurrentPrice = %v, want %v", tech.CurrentPrice, want)
	}
	if tech.MA20 <= 0 || tech.MA50 <= 0 || tech.MA200 <= 0 {
		t.Errorf("Expected all MAs populated, got %+v", tech)
	}
	if tech.RSI != 100 {
		t.Errorf("Expected RSI 100 for a monotone series, got %v", tech.RSI)
	}
	if tech.High52Week <= tech.Low52Week {
		t.Errorf("Expected high > low, got %v <= %v", tech.High52Week, tech.Low52Week)
	}
	if tech.YTDReturn <= 0 {
		t.Errorf("Expected positive YTD return for a rising series, got %v", tech.YTDReturn)
	}
}

func TestBuildTechnicalsShortHistory(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	candles := candleSeries(5, now.AddDate(0, 0, -5), func(i int) float64 { return 50 })

	tech := BuildTechnicals(candles, now)
	if tech.CurrentPrice != 50 {
		t.Errorf("CurrentPrice = %v, want 50", tech.CurrentPrice)
	}
	if tech.MA20 != 0 || tech.MA200 != 0 || tech.RSI != 0 {
		t.Errorf("Expected zeroed indicators without history, got %+v", tech)
	}
}

func TestBuildTechnicalsEmpty(t *testing.T) {
	tech := BuildTechnicals(nil, time.Now())
	if tech != (types.Technicals{}) {
		t.Errorf("Expected zero snapshot, got %+v", tech)
	}
}

func TestYTDReturn(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := []types.Candle{
		{Ts: time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC).Unix(), Close: 90},
		{Ts: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC).Unix(), Close: 100},
		{Ts: time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC).Unix(), Close: 120},
	}
	got := ytdReturn(candles, now)
	if math.Abs(got-20) > 1e-9 {
		t.Errorf("ytdReturn = %v, want 20", got)
	}
}

func TestStripCorpSuffix(t *testing.T) {
	cases := map[string]string{
		"Apple Inc.":         "Apple",
		"Oracle Corporation": "Oracle",
		"Tesla":              "Tesla",
		"Intel Corp":         "Intel",
	}
	for in, want := range cases {
		if got := StripCorpSuffix(in); got != want {
			t.Errorf("StripCorpSuffix(%q) = %q, want %q", in, got, want)
		}
	}
}
