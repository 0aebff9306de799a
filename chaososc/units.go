package chaososc

// Lengths maps the length-ratio knob to the two arm lengths. Their sum stays
// at 2.03 and neither reaches zero for knob values in [0, 1].
func Lengths(lenRatio float32) (l1, l2 float64) {
	l2 = float64(float32(lenRatio*2.0) + 0.01)
	l1 = 2.03 - l2
	return l1, l2
}

// DriveOctave maps a base-frequency knob and its fine tune to octaves above
// RefFreq. The base knob spans eight octaves.
func DriveOctave(base, fine float32) float64 {
	return float64(float32(base*8.0) + fine)
}

// ScaleFactor maps the physics-scale knob to the integrator's gain.
func ScaleFactor(scale float32) float64 {
	s := float64(scale)
	return s * s * 8.0
}

// SaturationCeiling is the soft-clip bound applied to velocities and angle steps.
func SaturationCeiling(scaleFactor float64) float64 {
	return 15.0 / (scaleFactor + 0.01)
}

// OctaveDisplay returns the base-frequency knob in octaves.
func OctaveDisplay(base float32) float32 {
	return base * 8.0
}

// ModDepthPercent returns a cross-FM knob as a percentage.
func ModDepthPercent(depth float32) float32 {
	return depth * 200.0
}

// controls are the per-sample values derived from a snapshot.
type controls struct {
	l1, l2           float64
	octave1, octave2 float64
	drive1, drive2   float64
	mod2To1, mod1To2 float64
	scaleFactor      float64
}

func (s *Snapshot) controls() controls {
	l1, l2 := Lengths(s.LenRatio)
	return controls{
		l1:          l1,
		l2:          l2,
		octave1:     DriveOctave(s.Freq1, s.Fine1),
		octave2:     DriveOctave(s.Freq2, s.Fine2),
		drive1:      float64(s.Drive1),
		drive2:      float64(s.Drive2),
		mod2To1:     float64(s.Mod2To1),
		mod1To2:     float64(s.Mod1To2),
		scaleFactor: ScaleFactor(s.Scale),
	}
}
