package trend

import (
	"math"
	"testing"

	"MacroPulse/internal/domain/models"
)

func mustClassifier(t *testing.T, mode Mode) Classifier {
	t.Helper()
	c, err := NewClassifier(mode)
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	return c
}

func TestClassifyNoBaseline(t *testing.T) {
	for _, mode := range []Mode{ModeDiscrete, ModeGradient} {
		c := mustClassifier(t, mode)
		for _, dir := range []models.Direction{models.DirectionPositive, models.DirectionNegative} {
			// missing predecessor
			if got := c.Classify([]float64{3.7}, dir); got.Level != models.LevelNeutral {
				t.Fatalf("%s/%s single value: got %v", mode, dir, got.Level)
			}
			// zero baseline
			if got := c.Classify([]float64{0, 3.7}, dir); got.Level != models.LevelNeutral {
				t.Fatalf("%s/%s zero baseline: got %v", mode, dir, got.Level)
			}
		}
	}
}

func TestClassifyZeroChange(t *testing.T) {
	c := mustClassifier(t, ModeGradient)
	if got := c.Classify([]float64{100, 100}, models.DirectionPositive); got.Level != models.LevelNeutral {
		t.Fatalf("zero change: got %v", got.Level)
	}
	// below the noise threshold
	if got := c.Classify([]float64{100, 100.001}, models.DirectionPositive); got.Level != models.LevelNeutral {
		t.Fatalf("sub-threshold change: got %v", got.Level)
	}
}

func TestClassifyDirectionFlip(t *testing.T) {
	cases := []struct {
		name    string
		prev, v float64
	}{
		{"rising", 100, 110},
		{"falling", 5.5, 5.0},
		{"small rise", 2.0, 2.01},
	}
	c := mustClassifier(t, ModeDiscrete)
	for _, tc := range cases {
		pos := c.Classify([]float64{tc.prev, tc.v}, models.DirectionPositive)
		neg := c.Classify([]float64{tc.prev, tc.v}, models.DirectionNegative)
		if pos.Level == models.LevelNeutral || neg.Level == models.LevelNeutral {
			t.Fatalf("%s: unexpected neutral", tc.name)
		}
		if (pos.Level == models.LevelFavorable) == (neg.Level == models.LevelFavorable) {
			t.Fatalf("%s: direction flip did not invert favorability", tc.name)
		}
	}
}

func TestClassifyNegativeDirectionUnfavorable(t *testing.T) {
	// unemployment up 10%: bad news for a negative-direction series
	c := mustClassifier(t, ModeGradient)
	got := c.Classify([]float64{5.0, 5.5}, models.DirectionNegative)
	if got.Level != models.LevelUnfavorable {
		t.Fatalf("expected unfavorable, got %v", got.Level)
	}
}

func TestGradientIntensity(t *testing.T) {
	c := mustClassifier(t, ModeGradient)

	// +10% clamps to the 5% bound: full intensity
	got := c.Classify([]float64{100, 110}, models.DirectionPositive)
	if got.Level != models.LevelFavorable {
		t.Fatalf("expected favorable, got %v", got.Level)
	}
	if got.Intensity != 1 {
		t.Fatalf("expected clamped intensity 1, got %v", got.Intensity)
	}
	if got.Color != colorGreen {
		t.Fatalf("saturated favorable should hit the vibrant endpoint, got %s", got.Color)
	}

	// +2.5% lands mid-ramp
	got = c.Classify([]float64{100, 102.5}, models.DirectionPositive)
	if math.Abs(got.Intensity-0.5) > 1e-9 {
		t.Fatalf("expected intensity 0.5, got %v", got.Intensity)
	}
	if got.Color == colorGreen || got.Color == colorLightGreen || got.Color == colorNeutral {
		t.Fatalf("mid-ramp color should be interpolated, got %s", got.Color)
	}

	// unfavorable ramp is distinguishable from neutral grey
	got = c.Classify([]float64{100, 99.9}, models.DirectionPositive)
	if got.Level != models.LevelUnfavorable {
		t.Fatalf("expected unfavorable, got %v", got.Level)
	}
	if got.Color == colorNeutral {
		t.Fatalf("faint unfavorable must not collapse into neutral grey")
	}
}

func TestClassifyNonFinite(t *testing.T) {
	c := mustClassifier(t, ModeGradient)
	for _, vals := range [][]float64{
		{math.NaN(), 1},
		{1, math.NaN()},
		{math.Inf(1), 2},
		{2, math.Inf(-1)},
	} {
		if got := c.Classify(vals, models.DirectionPositive); got.Level != models.LevelNeutral {
			t.Fatalf("non-finite input %v: got %v", vals, got.Level)
		}
	}
}

func TestAccelerationVariant(t *testing.T) {
	c := mustClassifier(t, ModeAcceleration)

	cases := []struct {
		name   string
		values []float64
		dir    models.Direction
		want   models.Level
	}{
		{"rising accelerating", []float64{100, 101, 103}, models.DirectionPositive, models.LevelFavorable},
		{"rising decelerating", []float64{100, 103, 104}, models.DirectionPositive, models.LevelMixed},
		{"falling accelerating", []float64{100, 99, 97}, models.DirectionPositive, models.LevelUnfavorable},
		{"falling decelerating", []float64{100, 97, 96}, models.DirectionPositive, models.LevelMixed},
		{"flat latest", []float64{100, 101, 101}, models.DirectionPositive, models.LevelNeutral},
		{"short window", []float64{100, 101}, models.DirectionPositive, models.LevelNeutral},
		// direction folds in before momentum: unemployment falling faster is green
		{"improving negative series", []float64{6.0, 5.9, 5.6}, models.DirectionNegative, models.LevelFavorable},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.values, tc.dir); got.Level != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got.Level, tc.want)
		}
	}
}

func TestNormalizeMode(t *testing.T) {
	if NormalizeMode("") != ModeGradient {
		t.Fatalf("empty mode should default to gradient")
	}
	if NormalizeMode("acceleration") != ModeAcceleration {
		t.Fatalf("acceleration mode should round-trip")
	}
	if NormalizeMode("nope") != ModeGradient {
		t.Fatalf("unknown mode should default to gradient")
	}
}
