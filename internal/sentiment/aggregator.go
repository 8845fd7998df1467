package sentiment

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"market-mention-bot/internal/types"
)

// ErrNoWeight is returned when every candidate source has zero weight.
// Callers must exclude zero-sample sources before combining.
var ErrNoWeight = errors.New("all aggregation weights are zero")

// Aggregator merges per-source sentiment ratios into one probability pair
// using sample-size- and reliability-weighted averaging.
type Aggregator struct {
	reliability map[types.Source]float64
}

// NewAggregator creates an aggregator with per-source reliability weights.
func NewAggregator(reliability map[types.Source]float64) *Aggregator {
	return &Aggregator{reliability: reliability}
}

// Combine computes the weighted average of values, with weight_i =
// samples_i * reliabilities_i. A zero total weight is a contract violation.
func (a *Aggregator) Combine(values []float64, samples []int, reliabilities []float64) (float64, error) {
	if len(values) != len(samples) || len(values) != len(reliabilities) {
		return 0, fmt.Errorf("mismatched input lengths: %d values, %d samples, %d reliabilities",
			len(values), len(samples), len(reliabilities))
	}
	var num, den float64
	for i := range values {
		w := float64(samples[i]) * reliabilities[i]
		num += w * values[i]
		den += w
	}
	if den == 0 {
		return 0, ErrNoWeight
	}
	return roundTo(num/den, 3), nil
}

// CombineSources merges the positive and negative ratios across sources,
// excluding sources with no samples, then splits the remaining neutral mass
// evenly between the two poles so Positive+Negative == 1.
func (a *Aggregator) CombineSources(perSource map[types.Source]types.SourceSentiment) (types.CombinedSentiment, error) {
	var pos, neg, rel []float64
	var samples []int
	for _, src := range types.Sources {
		m, ok := perSource[src]
		if !ok || m.SampleSize == 0 {
			continue
		}
		pos = append(pos, m.PositiveRatio)
		neg = append(neg, m.NegativeRatio)
		samples = append(samples, m.SampleSize)
		rel = append(rel, a.reliability[src])
	}
	if len(pos) == 0 {
		return types.CombinedSentiment{}, ErrNoWeight
	}

	p, err := a.Combine(pos, samples, rel)
	if err != nil {
		return types.CombinedSentiment{}, err
	}
	n, err := a.Combine(neg, samples, rel)
	if err != nil {
		return types.CombinedSentiment{}, err
	}

	neutral := 1 - (p + n)
	p = roundTo(p+neutral/2, 4)
	n = roundTo(n+neutral/2, 4)

	// Floating-point drift guard.
	if sum := p + n; math.Abs(sum-1) > 0.01 {
		p = roundTo(p/sum, 4)
		n = roundTo(n/sum, 4)
	}
	return types.CombinedSentiment{Positive: p, Negative: n}, nil
}

// SigFig rounds x to n significant figures.
func SigFig(x float64, n int) float64 {
	if x == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'g', n, 64), 64)
	if err != nil {
		return x
	}
	return v
}

func roundTo(x float64, decimals int) float64 {
	pow := math.Pow10(decimals)
	return math.Round(x*pow) / pow
}
