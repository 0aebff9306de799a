package chaososc

import "math"

const twoPi = 2.0 * math.Pi

// Wrap reduces theta into [0, 2π) using the Euclidean remainder.
func Wrap(theta float64) float64 {
	r := math.Mod(theta, twoPi)
	if r < 0 {
		r += twoPi
	}
	// A tiny negative remainder can round up to exactly 2π.
	if r >= twoPi {
		return 0
	}
	return r
}

// Fade crossfades a and b; x is expected in [0, 1] and is not clamped.
func Fade(a, x, b float64) float64 {
	return a*(1.0-x) + b*x
}
