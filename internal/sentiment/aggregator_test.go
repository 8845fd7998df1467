package sentiment

import (
	"math"
	"testing"

	"market-mention-bot/internal/types"
)

func defaultReliability() map[types.Source]float64 {
	return map[types.Source]float64{
		types.SourceMicroblog: 0.7,
		types.SourceFinance:   1.0,
		types.SourceGeneral:   0.9,
	}
}

func TestCombineWeightedAverage(t *testing.T) {
	a := NewAggregator(defaultReliability())

	got, err := a.Combine(
		[]float64{0.60, 0.70, 0.65},
		[]int{1000, 50, 20},
		[]float64{0.7, 1.0, 0.9},
	)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	// (700*0.6 + 50*0.7 + 18*0.65) / 768
	want := (700*0.60 + 50*0.70 + 18*0.65) / 768
	if math.Abs(got-want) > 0.001 {
		t.Errorf("Expected %.3f, got %.3f", want, got)
	}
}

func TestCombineAllZeroWeights(t *testing.T) {
	a := NewAggregator(defaultReliability())

	if _, err := a.Combine([]float64{0.5}, []int{0}, []float64{0.7}); err != ErrNoWeight {
		t.Errorf("Expected ErrNoWeight, got %v", err)
	}
}

func TestCombineSourcesInvariant(t *testing.T) {
	a := NewAggregator(defaultReliability())

	cases := []map[types.Source]types.SourceSentiment{
		{
			types.SourceMicroblog: {PositiveRatio: 0.60, NegativeRatio: 0.20, SampleSize: 1000},
			types.SourceFinance:   {PositiveRatio: 0.70, NegativeRatio: 0.10, SampleSize: 50},
			types.SourceGeneral:   {PositiveRatio: 0.65, NegativeRatio: 0.15, SampleSize: 20},
		},
		{
			types.SourceFinance: {PositiveRatio: 1.0, NegativeRatio: 0.0, SampleSize: 5},
		},
		{
			types.SourceMicroblog: {PositiveRatio: 0.0, NegativeRatio: 0.0, SampleSize: 3},
			types.SourceGeneral:   {PositiveRatio: 0.33, NegativeRatio: 0.33, SampleSize: 9},
		},
	}

	for i, perSource := range cases {
		combined, err := a.CombineSources(perSource)
		if err != nil {
			t.Fatalf("case %d: CombineSources failed: %v", i, err)
		}
		if combined.Positive < 0 || combined.Positive > 1 || combined.Negative < 0 || combined.Negative > 1 {
			t.Errorf("case %d: result out of [0,1]: %+v", i, combined)
		}
		if sum := combined.Positive + combined.Negative; math.Abs(sum-1) > 1e-2 {
			t.Errorf("case %d: positive+negative = %.4f, want 1", i, sum)
		}
	}
}

func TestCombineSourcesExcludesZeroSamples(t *testing.T) {
	a := NewAggregator(defaultReliability())

	perSource := map[types.Source]types.SourceSentiment{
		types.SourceMicroblog: {PositiveRatio: 0.9, NegativeRatio: 0.1, SampleSize: 0},
		types.SourceFinance:   {PositiveRatio: 0.5, NegativeRatio: 0.5, SampleSize: 10},
	}

	combined, err := a.CombineSources(perSource)
	if err != nil {
		t.Fatalf("CombineSources failed: %v", err)
	}
	// With the zero-sample microblog source excluded there is no neutral mass.
	if math.Abs(combined.Positive-0.5) > 1e-9 || math.Abs(combined.Negative-0.5) > 1e-9 {
		t.Errorf("Expected 0.5/0.5 from the finance source alone, got %+v", combined)
	}
}

func TestCombineSourcesAllEmpty(t *testing.T) {
	a := NewAggregator(defaultReliability())

	_, err := a.CombineSources(map[types.Source]types.SourceSentiment{
		types.SourceFinance: {SampleSize: 0},
	})
	if err != ErrNoWeight {
		t.Errorf("Expected ErrNoWeight when every source is empty, got %v", err)
	}
}

func TestSigFig(t *testing.T) {
	cases := []struct {
		in   float64
		n    int
		want float64
	}{
		{0, 2, 0},
		{0.3333, 2, 0.33},
		{0.6666, 2, 0.67},
		{123.456, 2, 120},
		{0.005, 1, 0.005},
	}
	for _, c := range cases {
		if got := SigFig(c.in, c.n); got != c.want {
			t.Errorf("SigFig(%v, %d) = %v, want %v", c.in, c.n, got, c.want)
		}
	}
}
