package clash

import "math"

// noiseEps is the magnitude below which a computed volume is treated as
// exactly zero before rounding. Boolean operations on degenerate or
// non-manifold input produce noise at this scale.
const noiseEps = 1e-12

// volumeScale rounds volumes to 6 decimal places.
const volumeScale = 1e6

// Round6 clamps numeric noise to zero and rounds to 6 decimal places.
// Negative inputs (boolean-operation artifacts) clamp to 0.
func Round6(x float64) float64 {
	if x < 0 || math.Abs(x) < noiseEps {
		return 0
	}
	return math.Round(x*volumeScale) / volumeScale
}
