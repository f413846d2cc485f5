package trend

import (
	"fmt"
	"math"

	"MacroPulse/internal/domain/models"
)

// UpThreshold is the minimum relative change that counts as a move.
// Anything below is floating noise and classifies as neutral.
const UpThreshold = 0.0001

// gradientClamp bounds the relative change mapped onto the color ramp;
// a 5% monthly move saturates the gradient.
const gradientClamp = 0.05

// Heatmap endpoint colors.
const (
	colorNeutral    = "#bdbdbd"
	colorGreen      = "#1a9641"
	colorLightGreen = "#d9f0d3"
	colorRed        = "#d7191c"
	colorLightGrey  = "#e0e0e0"
	colorYellow     = "#fdae61"
)

// Mode selects a classification strategy.
type Mode string

const (
	ModeDiscrete     Mode = "discrete"
	ModeGradient     Mode = "gradient"
	ModeAcceleration Mode = "acceleration"
)

// NormalizeMode converts a raw string to a valid mode (or the default).
func NormalizeMode(s string) Mode {
	switch Mode(s) {
	case ModeDiscrete, ModeGradient, ModeAcceleration:
		return Mode(s)
	default:
		return ModeGradient
	}
}

// Classifier turns a window of trailing values into a trend signal.
// Implementations are pure and safe for concurrent use.
type Classifier interface {
	// Window is the number of trailing values the strategy reads.
	Window() int
	// Classify reads values ordered oldest-first, ending at the value under
	// classification, and returns its signal. Short windows, zero baselines
	// and any non-finite arithmetic resolve to neutral; it never panics.
	Classify(values []float64, dir models.Direction) models.Signal
}

// NewClassifier builds the strategy for mode.
func NewClassifier(mode Mode) (Classifier, error) {
	switch mode {
	case ModeDiscrete:
		return discreteClassifier{}, nil
	case ModeGradient:
		return gradientClassifier{}, nil
	case ModeAcceleration:
		return accelerationClassifier{}, nil
	default:
		return nil, fmt.Errorf("unknown classifier mode %q", mode)
	}
}

func neutralSignal() models.Signal {
	return models.Signal{Level: models.LevelNeutral, Intensity: 0, Color: colorNeutral}
}

// relChange computes (value-prev)/|prev|. ok is false for a zero baseline or
// non-finite result: division by a zero baseline is undefined, so it is
// treated as "no signal" rather than an error.
func relChange(value, prev float64) (float64, bool) {
	if prev == 0 {
		return 0, false
	}
	change := (value - prev) / math.Abs(prev)
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return 0, false
	}
	return change, true
}

func isFavorable(change float64, dir models.Direction) bool {
	return (change > 0 && dir == models.DirectionPositive) ||
		(change < 0 && dir == models.DirectionNegative)
}

type discreteClassifier struct{}

func (discreteClassifier) Window() int { return 2 }

func (discreteClassifier) Classify(values []float64, dir models.Direction) models.Signal {
	if len(values) < 2 {
		return neutralSignal()
	}
	change, ok := relChange(values[len(values)-1], values[len(values)-2])
	if !ok || math.Abs(change) < UpThreshold {
		return neutralSignal()
	}
	if isFavorable(change, dir) {
		return models.Signal{Level: models.LevelFavorable, Intensity: 1, Color: colorGreen}
	}
	return models.Signal{Level: models.LevelUnfavorable, Intensity: 1, Color: colorRed}
}

type gradientClassifier struct{}

func (gradientClassifier) Window() int { return 2 }

func (gradientClassifier) Classify(values []float64, dir models.Direction) models.Signal {
	if len(values) < 2 {
		return neutralSignal()
	}
	change, ok := relChange(values[len(values)-1], values[len(values)-2])
	if !ok || math.Abs(change) < UpThreshold {
		return neutralSignal()
	}

	clamped := math.Max(-gradientClamp, math.Min(gradientClamp, change))
	intensity := math.Abs(clamped) / gradientClamp
	eased := intensity * intensity * (3 - 2*intensity) // smoothstep

	if isFavorable(change, dir) {
		return models.Signal{
			Level:     models.LevelFavorable,
			Intensity: intensity,
			Color:     lerpHex(colorLightGreen, colorGreen, eased),
		}
	}
	return models.Signal{
		Level:     models.LevelUnfavorable,
		Intensity: intensity,
		Color:     lerpHex(colorLightGrey, colorRed, eased),
	}
}

// accelerationClassifier is the 4-way variant: it reads three consecutive
// values, compares the two month-over-month changes, and distinguishes moves
// that are gaining momentum from moves that are fading.
type accelerationClassifier struct{}

func (accelerationClassifier) Window() int { return 3 }

func (accelerationClassifier) Classify(values []float64, dir models.Direction) models.Signal {
	if len(values) < 3 {
		return neutralSignal()
	}
	v0, v1, v2 := values[len(values)-3], values[len(values)-2], values[len(values)-1]
	prior, ok := relChange(v1, v0)
	if !ok {
		return neutralSignal()
	}
	latest, ok := relChange(v2, v1)
	if !ok || math.Abs(latest) < UpThreshold {
		return neutralSignal()
	}

	// Fold direction in so "improving" always has positive sign.
	if dir == models.DirectionNegative {
		prior, latest = -prior, -latest
	}

	switch {
	case latest > 0 && latest > prior:
		return models.Signal{Level: models.LevelFavorable, Intensity: 1, Color: colorGreen}
	case latest > 0:
		return models.Signal{Level: models.LevelMixed, Intensity: 1, Color: colorYellow}
	case latest < prior:
		return models.Signal{Level: models.LevelUnfavorable, Intensity: 1, Color: colorRed}
	default:
		return models.Signal{Level: models.LevelMixed, Intensity: 1, Color: colorYellow}
	}
}

// lerpHex linearly interpolates two "#rrggbb" colors.
func lerpHex(from, to string, t float64) string {
	fr, fg, fb := splitHex(from)
	tr, tg, tb := splitHex(to)
	lerp := func(a, b int) int { return a + int(math.Round(t*float64(b-a))) }
	return fmt.Sprintf("#%02x%02x%02x", lerp(fr, tr), lerp(fg, tg), lerp(fb, tb))
}

func splitHex(c string) (int, int, int) {
	var r, g, b int
	fmt.Sscanf(c, "#%02x%02x%02x", &r, &g, &b)
	return r, g, b
}
