package chaososc

import (
	"math"
	"math/rand"
)

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func randomSnapshot(rng *rand.Rand) Snapshot {
	var s Snapshot
	for i := 0; i < NumParams; i++ {
		s.Set(i, rng.Float32())
	}
	return s
}

func uniformSnapshot(v float32) Snapshot {
	var s Snapshot
	for i := 0; i < NumParams; i++ {
		s.Set(i, v)
	}
	return s
}

func newOscillatorWith(s Snapshot, sampleRate float32) *Oscillator {
	o := NewOscillator()
	o.Params().Store(s)
	o.SetSampleRate(sampleRate)
	return o
}

// renderChannels runs o for frames samples in blocks and returns both channels.
func renderChannels(o *Oscillator, frames int, blockSize int) ([]float32, []float32) {
	left := make([]float32, frames)
	right := make([]float32, frames)
	for pos := 0; pos < frames; pos += blockSize {
		end := pos + blockSize
		if end > frames {
			end = frames
		}
		o.Process(left[pos:end], right[pos:end], end-pos)
	}
	return left, right
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
