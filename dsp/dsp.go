package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (previous samples)
	x1, x2 float32 // input history
	y1, y2 float32 // output history
}

// NewBiquad creates a new biquad filter with the given coefficients
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float32) float32 {
	// Direct Form I implementation
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	// Long silent tails must not leave denormals in the feedback path.
	b.y1 = float32(dspcore.FlushDenormals(float64(output)))

	return b.y1
}

// ProcessBlock filters buf in place.
func (b *Biquad) ProcessBlock(buf []float32) {
	for i, v := range buf {
		buf[i] = b.Process(v)
	}
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// NewLowpass creates a simple lowpass biquad filter
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	alpha, cosw0 := biquadPrewarp(cutoff, sampleRate, q)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	return normalized(b0, b1, b2, alpha, cosw0)
}

// NewHighpass creates a simple highpass biquad filter, used to strip DC.
func NewHighpass(cutoff, sampleRate, q float32) *Biquad {
	alpha, cosw0 := biquadPrewarp(cutoff, sampleRate, q)

	b0 := (1.0 + cosw0) / 2.0
	b1 := -(1.0 + cosw0)
	b2 := (1.0 + cosw0) / 2.0
	return normalized(b0, b1, b2, alpha, cosw0)
}

func biquadPrewarp(cutoff, sampleRate, q float32) (alpha, cosw0 float64) {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	return math.Sin(w0) / (2.0 * float64(q)), math.Cos(w0)
}

func normalized(b0, b1, b2, alpha, cosw0 float64) *Biquad {
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	// Normalize by a0
	return NewBiquad(
		float32(b0/a0),
		float32(b1/a0),
		float32(b2/a0),
		float32(a1/a0),
		float32(a2/a0),
	)
}
