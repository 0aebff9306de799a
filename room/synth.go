package room

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-chaososc/dsp"
	pdefd "github.com/cwbudde/algo-pde/fd"
	pdepoisson "github.com/cwbudde/algo-pde/poisson"
)

const (
	speedOfSound = 343.0
	// modeGridPoints discretizes each room axis for the eigenvalue solve.
	modeGridPoints = 96
)

// SynthConfig controls the synthetic stereo room used when no IR file is given.
type SynthConfig struct {
	SampleRate int
	DurationS  float64
	Seed       int64

	DirectLevel float64
	EarlyCount  int
	EarlySpanS  float64
	LateLevel   float64
	StereoWidth float64
	// DampingHz is the lowpass cutoff of the diffuse tail.
	DampingHz float64
	DecayS    float64
	FadeOutS  float64

	// RoomDimsM are the axis lengths whose axial modes ring below ModeMaxHz.
	RoomDimsM [3]float64
	ModeLevel float64
	ModeMaxHz float64

	NormalizePeak float64
}

// DefaultSynthConfig returns a small bright room at sampleRate.
func DefaultSynthConfig(sampleRate int) SynthConfig {
	return SynthConfig{
		SampleRate:    sampleRate,
		DurationS:     1.2,
		Seed:          1,
		DirectLevel:   0.7,
		EarlyCount:    24,
		EarlySpanS:    0.05,
		LateLevel:     0.08,
		StereoWidth:   0.6,
		DampingHz:     6000,
		DecayS:        0.9,
		FadeOutS:      0.02,
		RoomDimsM:     [3]float64{7.1, 5.3, 3.2},
		ModeLevel:     0.04,
		ModeMaxHz:     250,
		NormalizePeak: 0.9,
	}
}

func (c *SynthConfig) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 || c.DecayS <= 0 {
		return fmt.Errorf("duration and decay must be > 0")
	}
	if c.EarlyCount < 0 || c.EarlySpanS < 0 {
		return fmt.Errorf("early reflections must be >= 0")
	}
	if c.DirectLevel < 0 || c.LateLevel < 0 || c.StereoWidth < 0 {
		return fmt.Errorf("levels and width must be >= 0")
	}
	if c.DampingHz <= 0 || c.DampingHz >= 0.5*float64(c.SampleRate) {
		return fmt.Errorf("damping must be in (0, nyquist): %g", c.DampingHz)
	}
	if c.ModeLevel < 0 {
		return fmt.Errorf("mode level must be >= 0")
	}
	if c.ModeLevel > 0 {
		for _, d := range c.RoomDimsM {
			if d <= 0 {
				return fmt.Errorf("room dimensions must be > 0: %v", c.RoomDimsM)
			}
		}
		if c.ModeMaxHz <= 0 {
			return fmt.Errorf("mode max frequency must be > 0")
		}
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// Synthesize builds a stereo IR from a direct impulse, randomly placed early
// reflections, low axial room modes and an exponentially decaying lowpassed
// noise tail.
func Synthesize(cfg SynthConfig) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	n := max(int(math.Round(cfg.DurationS*float64(cfg.SampleRate))), 1)
	left := make([]float32, n)
	right := make([]float32, n)
	rng := rand.New(rand.NewSource(cfg.Seed))
	sr := float64(cfg.SampleRate)

	// Tail first so the filters see only noise.
	if cfg.LateLevel > 0 {
		for i := 0; i < n; i++ {
			left[i] = float32(rng.NormFloat64())
			right[i] = float32(rng.NormFloat64())
		}
		lpL := dsp.NewLowpass(float32(cfg.DampingHz), float32(sr), 0.707)
		lpR := dsp.NewLowpass(float32(cfg.DampingHz), float32(sr), 0.707)
		lpL.ProcessBlock(left)
		lpR.ProcessBlock(right)
		for i := 0; i < n; i++ {
			env := float32(cfg.LateLevel * math.Exp(-float64(i)/(sr*cfg.DecayS/6.9)))
			left[i] *= env
			right[i] *= env
		}
	}

	left[0] += float32(cfg.DirectLevel * (1.0 - 0.05*cfg.StereoWidth))
	right[0] += float32(cfg.DirectLevel * (1.0 + 0.05*cfg.StereoWidth))

	for i := 0; i < cfg.EarlyCount; i++ {
		t := 0.001 + cfg.EarlySpanS*rng.Float64()
		idx := int(t * sr)
		if idx <= 0 || idx >= n {
			continue
		}
		amp := (0.10 + 0.35*rng.Float64()) * math.Exp(-t*20.0)
		pan := (rng.Float64()*2.0 - 1.0) * cfg.StereoWidth
		left[idx] += float32(amp * (1.0 - 0.5*pan))
		right[idx] += float32(amp * (1.0 + 0.5*pan))
	}

	if cfg.ModeLevel > 0 {
		modes := roomModes(cfg.RoomDimsM, cfg.ModeMaxHz)
		amp := cfg.ModeLevel / math.Sqrt(float64(max(len(modes), 1)))
		decay := sr * cfg.DecayS / 6.9
		for _, f := range modes {
			w := 2 * math.Pi * f / sr
			phase := 2 * math.Pi * rng.Float64()
			pan := (rng.Float64()*2.0 - 1.0) * cfg.StereoWidth
			gl := float32(amp * (1.0 - 0.5*pan))
			gr := float32(amp * (1.0 + 0.5*pan))
			for i := 0; i < n; i++ {
				v := float32(math.Sin(w*float64(i)+phase) * math.Exp(-float64(i)/decay))
				left[i] += gl * v
				right[i] += gr * v
			}
		}
	}

	fadeOut(left, cfg.FadeOutS, cfg.SampleRate)
	fadeOut(right, cfg.FadeOutS, cfg.SampleRate)

	peak := max(peakAbs(left), peakAbs(right), 1e-12)
	s := float32(cfg.NormalizePeak / peak)
	for i := range left {
		left[i] *= s
		right[i] *= s
	}
	return left, right, nil
}

// SetSyntheticIR replaces the IR with a synthesized room at the convolver's rate.
func (c *Convolver) SetSyntheticIR(cfg SynthConfig) error {
	cfg.SampleRate = c.sampleRate
	left, right, err := Synthesize(cfg)
	if err != nil {
		return fmt.Errorf("synthesize room: %w", err)
	}
	return c.SetIR(left, right)
}

// roomModes returns the axial mode frequencies of a box room up to maxHz,
// from the finite-difference Laplacian spectrum of each axis.
func roomModes(dims [3]float64, maxHz float64) []float64 {
	var out []float64
	for _, length := range dims {
		h := length / float64(modeGridPoints+1)
		for _, lambda := range pdefd.Eigenvalues(modeGridPoints, h, pdepoisson.Dirichlet) {
			f := speedOfSound * math.Sqrt(lambda) / (2 * math.Pi)
			if f > maxHz {
				break
			}
			out = append(out, f)
		}
	}
	return out
}

// fadeOut applies a raised-cosine fade to the last fadeS seconds of buf.
func fadeOut(buf []float32, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(buf) == 0 {
		return
	}
	fadeSamples := min(int(math.Round(fadeS*float64(sampleRate))), len(buf))
	start := len(buf) - fadeSamples
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		buf[start+i] *= float32(0.5 * (1.0 + math.Cos(t*math.Pi)))
	}
}

func peakAbs(x []float32) float64 {
	m := 0.0
	for _, v := range x {
		m = max(m, math.Abs(float64(v)))
	}
	return m
}
