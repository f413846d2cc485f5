package trend

import (
	"math"
	"testing"
)

func sumWeights(w map[string]float64) float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

func TestNormalizeWeights(t *testing.T) {
	known := []string{"A", "B"}

	got := NormalizeWeights(map[string]float64{"A": 2, "B": 2}, known)
	if !almostEqual(got["A"], 0.5) || !almostEqual(got["B"], 0.5) {
		t.Fatalf("equal inputs: got %v", got)
	}

	got = NormalizeWeights(map[string]float64{"A": 3, "B": 1}, known)
	if !almostEqual(got["A"], 0.75) || !almostEqual(got["B"], 0.25) {
		t.Fatalf("3:1 inputs: got %v", got)
	}
}

func TestNormalizeWeightsAllZeroFallsBackToEqual(t *testing.T) {
	known := []string{"A", "B"}
	got := NormalizeWeights(map[string]float64{"A": 0, "B": 0}, known)
	if !almostEqual(got["A"], 0.5) || !almostEqual(got["B"], 0.5) {
		t.Fatalf("all-zero: got %v", got)
	}

	got = NormalizeWeights(nil, known)
	if !almostEqual(got["A"], 0.5) || !almostEqual(got["B"], 0.5) {
		t.Fatalf("nil raw: got %v", got)
	}
}

func TestNormalizeWeightsSumInvariant(t *testing.T) {
	known := []string{"A", "B", "C"}
	inputs := []map[string]float64{
		{"A": 1, "B": 2, "C": 3},
		{"A": 0.1},
		{"A": -5, "B": -5, "C": -5}, // negatives coerce to zero, equal fallback
		{"A": math.NaN(), "B": 2},
		{},
	}
	for _, raw := range inputs {
		got := NormalizeWeights(raw, known)
		if len(got) != len(known) {
			t.Fatalf("input %v: expected %d entries, got %d", raw, len(known), len(got))
		}
		if s := sumWeights(got); math.Abs(s-1) > 1e-9 {
			t.Fatalf("input %v: weights sum to %v", raw, s)
		}
		for id, w := range got {
			if w < 0 {
				t.Fatalf("input %v: negative weight %v for %s", raw, w, id)
			}
		}
	}
}

func TestNormalizeWeightsNegativeClamped(t *testing.T) {
	got := NormalizeWeights(map[string]float64{"A": -1, "B": 1}, []string{"A", "B"})
	if got["A"] != 0 || !almostEqual(got["B"], 1) {
		t.Fatalf("got %v", got)
	}
}

func TestNormalizeWeightsNoKnownIDs(t *testing.T) {
	got := NormalizeWeights(map[string]float64{"A": 1}, nil)
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}
