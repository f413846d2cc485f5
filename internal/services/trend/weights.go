package trend

import "math"

// NormalizeWeights validates and normalizes a raw weight map over the known
// series ids. Missing, NaN and negative entries coerce to zero. A positive
// sum divides through so the result sums to 1; an all-zero or empty input
// falls back to equal weighting. No known ids yields an empty map.
func NormalizeWeights(raw map[string]float64, knownIDs []string) map[string]float64 {
	out := make(map[string]float64, len(knownIDs))
	if len(knownIDs) == 0 {
		return out
	}

	var sum float64
	for _, id := range knownIDs {
		w := raw[id]
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			w = 0
		}
		out[id] = w
		sum += w
	}

	if sum > 0 {
		for id := range out {
			out[id] /= sum
		}
		return out
	}

	equal := 1 / float64(len(knownIDs))
	for _, id := range knownIDs {
		out[id] = equal
	}
	return out
}
