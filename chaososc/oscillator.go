package chaososc

import "math"

// ReferenceSampleRate is the rate at which the integrator's step size is unscaled.
const ReferenceSampleRate = 44100.0

// State is the pendulum's angles (radians) and angular velocities (radians per sample).
type State struct {
	Th1 float64
	Th2 float64
	W1  float64
	W2  float64
}

// InitialState is the off-equilibrium start that seeds the chaotic motion.
func InitialState() State {
	return State{Th1: 3.0, Th2: 4.0}
}

// Oscillator is the stereo chaotic generator: a double pendulum driven and
// phase modulated by two sine oscillators. It is not safe for concurrent
// processing; its Params may be written from any goroutine.
type Oscillator struct {
	params *Params

	sampleRate float32
	srScale    float64

	state  State
	phase1 float64
	phase2 float64
}

// NewOscillator creates an oscillator with its own default parameter store.
func NewOscillator() *Oscillator {
	return NewOscillatorWithParams(NewParams())
}

// NewOscillatorWithParams creates an oscillator reading from a shared store.
func NewOscillatorWithParams(params *Params) *Oscillator {
	if params == nil {
		params = NewParams()
	}
	o := &Oscillator{
		params: params,
		state:  InitialState(),
	}
	o.SetSampleRate(ReferenceSampleRate)
	return o
}

// Params returns the parameter store read on every sample.
func (o *Oscillator) Params() *Params {
	return o.params
}

// SetSampleRate updates the rate and the step-size correction. The rate must
// be positive; the plugin adapter rejects anything else.
func (o *Oscillator) SetSampleRate(rate float32) {
	o.sampleRate = rate
	o.srScale = ReferenceSampleRate / float64(rate)
}

// SampleRate returns the current sample rate.
func (o *Oscillator) SampleRate() float32 {
	return o.sampleRate
}

// State returns the current pendulum state.
func (o *Oscillator) State() State {
	return o.state
}

// Phases returns the two drive oscillator phases.
func (o *Oscillator) Phases() (float64, float64) {
	return o.phase1, o.phase2
}

// Saturation returns the soft-clip ceiling for the current scale knob.
func (o *Oscillator) Saturation() float64 {
	return SaturationCeiling(ScaleFactor(o.params.Get(Scale)))
}

// Reset restores the construction state. The sample rate and parameters are kept.
func (o *Oscillator) Reset() {
	o.state = InitialState()
	o.phase1 = 0
	o.phase2 = 0
}

// Process writes frames samples to left and right, bounded by the slice lengths.
func (o *Oscillator) Process(left, right []float32, frames int) {
	if frames > len(left) {
		frames = len(left)
	}
	if frames > len(right) {
		frames = len(right)
	}
	for i := 0; i < frames; i++ {
		snap := o.params.Snapshot()
		left[i], right[i] = o.tick(&snap)
	}
}

// Render returns numFrames of interleaved stereo audio.
func (o *Oscillator) Render(numFrames int) []float32 {
	if numFrames <= 0 {
		return nil
	}
	out := make([]float32, numFrames*2)
	for i := 0; i < numFrames; i++ {
		snap := o.params.Snapshot()
		out[i*2], out[i*2+1] = o.tick(&snap)
	}
	return out
}

// tick advances the system by one sample.
func (o *Oscillator) tick(snap *Snapshot) (float32, float32) {
	c := snap.controls()

	// Both increments come from the previous phases before either advances.
	inc1, inc2 := driveIncrements(o.phase1, o.phase2, &c, o.sampleRate)
	o.phase1 = Advance(o.phase1, inc1)
	o.phase2 = Advance(o.phase2, inc2)

	s := &o.state
	dth1, dth2, dw1, dw2 := Step(s.Th1, s.Th2, s.W1, s.W2, c.l1, c.l2)

	sf := c.scaleFactor
	sat := SaturationCeiling(sf)

	// tanh keeps |w| <= sat; without it the feedback diverges for some settings.
	s.W1 = math.Tanh((s.W1+dw1*0.1*o.srScale*sf)/sat) * sat
	s.W2 = math.Tanh((s.W2+dw2*0.1*o.srScale*sf)/sat) * sat

	step1 := Fade(math.Tanh(dth1*0.1*o.srScale*sf/sat)*sat, c.drive1, inc1)
	step2 := Fade(math.Tanh(dth2*0.1*o.srScale*sf/sat)*sat, c.drive2, inc2)
	s.Th1 = Wrap(s.Th1 + step1)
	s.Th2 = Wrap(s.Th2 + step2)

	return float32(math.Sin(s.Th1)), float32(math.Sin(s.Th2))
}
