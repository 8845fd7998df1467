package marketdata

import (
	"math"
	"time"

	"market-mention-bot/internal/types"
)

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

func Bollinger(closes []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}

// BuildTechnicals derives the indicator snapshot from daily candles. Candles
// must be oldest-first. Indicators that lack enough history read as zero.
func BuildTechnicals(candles []types.Candle, now time.Time) types.Technicals {
	if len(candles) == 0 {
		return types.Technicals{}
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	last := candles[len(candles)-1]

	_, bbUp, bbLow := Bollinger(closes, 20, 2)

	t := types.Technicals{
		CurrentPrice: last.Close,
		Volume:       last.Vol,
		MA20:         zeroNaN(SMA(closes, 20)),
		MA50:         zeroNaN(SMA(closes, 50)),
		MA200:        zeroNaN(SMA(closes, 200)),
		RSI:          zeroNaN(RSI(closes, 14)),
		BBUpper:      zeroNaN(bbUp),
		BBLower:      zeroNaN(bbLow),
	}

	high, low := candles[0].High, candles[0].Low
	for _, c := range candles {
		if c.High > high {
			high = c.High
		}
		if c.Low > 0 && c.Low < low {
			low = c.Low
		}
	}
	t.High52Week = high
	t.Low52Week = low

	t.YTDReturn = ytdReturn(candles, now)
	return t
}

// ytdReturn is the percent move from the first close at or after January 1st
// of the current year.
func ytdReturn(candles []types.Candle, now time.Time) float64 {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	for _, c := range candles {
		if c.Ts >= yearStart && c.Close > 0 {
			last := candles[len(candles)-1].Close
			return (last/c.Close - 1) * 100
		}
	}
	return 0
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
