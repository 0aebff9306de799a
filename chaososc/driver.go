package chaososc

import "math"

// RefFreq is the frequency of octave 0, close to middle C#.
const RefFreq = 17.3238

// radiansPerCycle is the truncated 2π the increment formula has always used.
const radiansPerCycle = 6.28318530718

// PitchToIncrement converts a 1 V/oct pitch to a phase increment in radians per sample.
func PitchToIncrement(octave float64, sampleRate float32) float64 {
	f := math.Exp2(octave) * RefFreq
	return f / float64(sampleRate) * radiansPerCycle
}

// Advance moves a phase accumulator forward by inc and wraps it.
func Advance(phase, inc float64) float64 {
	return Wrap(phase + inc)
}

// driveIncrements computes both oscillator increments for one sample from the
// previous phases. Each oscillator is frequency modulated by the other.
func driveIncrements(p1, p2 float64, c *controls, sampleRate float32) (inc1, inc2 float64) {
	inc1 = PitchToIncrement(c.octave1+math.Sin(p2)*c.mod2To1, sampleRate)
	inc2 = PitchToIncrement(c.octave2+math.Sin(p1)*c.mod1To2, sampleRate)
	return inc1, inc2
}
