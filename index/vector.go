package index

import "math"

// NormalizeVector returns a unit-length copy of v. Normalized vectors let
// the provider rank with a plain dot product. A zero vector normalizes to
// a zero vector of the same length.
func NormalizeVector(v []float32) []float32 {
	out := make([]float32, len(v))
	if len(v) == 0 {
		return out
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return out
	}

	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
