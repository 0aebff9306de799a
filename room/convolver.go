// Package room adds an optional stereo impulse-response stage to offline
// renders of the oscillator.
package room

import (
	"fmt"
	"os"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
)

// BlockSize is the convolution partition length. Process keeps the streaming
// state continuous only when every call but the last is a multiple of it.
const BlockSize = 128

// Convolver is a stereo-in, stereo-out partitioned convolver with a wet/dry mix.
type Convolver struct {
	sampleRate int
	irLen      int
	wet        float32

	leftOLA  *dspconv.StreamingOverlapAddT[float32, complex64]
	rightOLA *dspconv.StreamingOverlapAddT[float32, complex64]

	// Pre-allocated block buffers.
	leftIn   []float32
	rightIn  []float32
	leftOut  []float32
	rightOut []float32
}

// New creates a convolver with an identity IR and a fully wet mix.
func New(sampleRate int) *Convolver {
	c := &Convolver{
		sampleRate: sampleRate,
		wet:        1,
		leftIn:     make([]float32, BlockSize),
		rightIn:    make([]float32, BlockSize),
		leftOut:    make([]float32, BlockSize),
		rightOut:   make([]float32, BlockSize),
	}
	_ = c.SetIR([]float32{1.0}, []float32{1.0})
	return c
}

// SetWet sets the wet share of the output, clamped to [0, 1].
func (c *Convolver) SetWet(wet float32) {
	c.wet = min(max(wet, 0), 1)
}

// Wet returns the wet share.
func (c *Convolver) Wet() float32 {
	return c.wet
}

// IRLen returns the length of the longer IR channel in samples.
func (c *Convolver) IRLen() int {
	return c.irLen
}

// Process convolves left and right in place. Both slices must have equal length.
func (c *Convolver) Process(left, right []float32) error {
	if len(left) != len(right) {
		return fmt.Errorf("left/right length mismatch: %d vs %d", len(left), len(right))
	}
	dry := 1 - c.wet
	for pos := 0; pos < len(left); pos += BlockSize {
		n := min(BlockSize, len(left)-pos)
		copy(c.leftIn, left[pos:pos+n])
		copy(c.rightIn, right[pos:pos+n])
		if n < BlockSize {
			clear(c.leftIn[n:])
			clear(c.rightIn[n:])
		}
		if err := c.leftOLA.ProcessBlockTo(c.leftOut, c.leftIn); err != nil {
			return fmt.Errorf("convolve left: %w", err)
		}
		if err := c.rightOLA.ProcessBlockTo(c.rightOut, c.rightIn); err != nil {
			return fmt.Errorf("convolve right: %w", err)
		}
		for i := 0; i < n; i++ {
			left[pos+i] = left[pos+i]*dry + c.leftOut[i]*c.wet
			right[pos+i] = right[pos+i]*dry + c.rightOut[i]*c.wet
		}
	}
	return nil
}

// ProcessInterleaved convolves an interleaved stereo buffer in place.
func (c *Convolver) ProcessInterleaved(samples []float32) error {
	frames := len(samples) / 2
	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := 0; i < frames; i++ {
		left[i] = samples[i*2]
		right[i] = samples[i*2+1]
	}
	if err := c.Process(left, right); err != nil {
		return err
	}
	for i := 0; i < frames; i++ {
		samples[i*2] = left[i]
		samples[i*2+1] = right[i]
	}
	return nil
}

// SetIR configures left/right impulse responses. An empty channel becomes
// an identity IR.
func (c *Convolver) SetIR(leftIR []float32, rightIR []float32) error {
	if len(leftIR) == 0 {
		leftIR = []float32{1.0}
	}
	if len(rightIR) == 0 {
		rightIR = []float32{1.0}
	}

	leftOLA, err := dspconv.NewStreamingOverlapAdd32(leftIR, BlockSize)
	if err != nil {
		return fmt.Errorf("left ir: %w", err)
	}
	rightOLA, err := dspconv.NewStreamingOverlapAdd32(rightIR, BlockSize)
	if err != nil {
		return fmt.Errorf("right ir: %w", err)
	}
	c.leftOLA = leftOLA
	c.rightOLA = rightOLA
	c.irLen = max(len(leftIR), len(rightIR))
	c.Reset()
	return nil
}

// SetIRFromWAV loads a mono or stereo IR from WAV, resampled to the
// convolver's rate. Mono files feed both channels.
func (c *Convolver) SetIRFromWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if srcRate <= 0 {
		return fmt.Errorf("invalid wav sample-rate: %d", srcRate)
	}
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return fmt.Errorf("empty wav data: %s", path)
	}

	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := range frames {
		left[i] = buf.Data[i*numCh]
		right[i] = buf.Data[i*numCh+min(1, numCh-1)]
	}

	left, err = c.resampleIfNeeded(left, srcRate)
	if err != nil {
		return err
	}
	right, err = c.resampleIfNeeded(right, srcRate)
	if err != nil {
		return err
	}
	return c.SetIR(left, right)
}

// Reset clears convolver history and overlap buffers.
func (c *Convolver) Reset() {
	if c.leftOLA != nil {
		c.leftOLA.Reset()
	}
	if c.rightOLA != nil {
		c.rightOLA.Reset()
	}
}

func (c *Convolver) resampleIfNeeded(in []float32, inRate int) ([]float32, error) {
	if inRate == c.sampleRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(inRate),
		float64(c.sampleRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, fmt.Errorf("resample ir %d->%d: %w", inRate, c.sampleRate, err)
	}

	in64 := make([]float64, len(in))
	for i, v := range in {
		in64[i] = float64(v)
	}
	out64 := r.Process(in64)
	out := make([]float32, len(out64))
	for i, v := range out64 {
		out[i] = float32(v)
	}
	return out, nil
}
