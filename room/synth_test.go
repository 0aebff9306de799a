package room

import (
	"math"
	"testing"
)

func TestSynthesizeIsDeterministicAndNormalized(t *testing.T) {
	cfg := DefaultSynthConfig(48000)
	l1, r1, err := Synthesize(cfg)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	l2, r2, _ := Synthesize(cfg)
	if len(l1) != int(math.Round(cfg.DurationS*48000)) {
		t.Fatalf("unexpected length %d", len(l1))
	}
	if maxAbsDiff(l1, l2) != 0 || maxAbsDiff(r1, r2) != 0 {
		t.Fatalf("same seed produced different IRs")
	}
	if p := max(peak(l1), peak(r1)); math.Abs(p-cfg.NormalizePeak) > 1e-6 {
		t.Fatalf("peak = %g, want %g", p, cfg.NormalizePeak)
	}
	if maxAbsDiff(l1, r1) == 0 {
		t.Fatalf("expected decorrelated channels")
	}
}

func TestSynthesizeTailDecays(t *testing.T) {
	cfg := DefaultSynthConfig(48000)
	cfg.EarlyCount = 0
	cfg.ModeLevel = 0
	left, _, err := Synthesize(cfg)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	q := len(left) / 4
	early := rmsOf(left[q/4 : q])
	late := rmsOf(left[3*q : 4*q])
	if late >= early*0.1 {
		t.Fatalf("tail did not decay: early rms %g, late rms %g", early, late)
	}
	// The fade ends at silence.
	if v := math.Abs(float64(left[len(left)-1])); v > 1e-4 {
		t.Fatalf("last sample %g not faded", v)
	}
}

func TestRoomModesMatchAxialFrequencies(t *testing.T) {
	modes := roomModes([3]float64{10, 10, 10}, 60)
	// Axial modes of a 10 m axis sit at k*c/(2L): 17.15, 34.3, 51.45 Hz per axis.
	if len(modes) != 9 {
		t.Fatalf("got %d modes below 60 Hz, want 9: %v", len(modes), modes)
	}
	for i := 0; i < 3; i++ {
		want := float64(i+1) * speedOfSound / 20
		if got := modes[i]; math.Abs(got-want) > 0.03*want {
			t.Fatalf("mode %d = %g Hz, want about %g", i, got, want)
		}
	}
}

func TestSynthesizeValidates(t *testing.T) {
	bad := []func(*SynthConfig){
		func(c *SynthConfig) { c.SampleRate = 4000 },
		func(c *SynthConfig) { c.DecayS = 0 },
		func(c *SynthConfig) { c.DampingHz = 30000 },
		func(c *SynthConfig) { c.LateLevel = -1 },
		func(c *SynthConfig) { c.NormalizePeak = 0 },
		func(c *SynthConfig) { c.RoomDimsM[1] = 0 },
	}
	for i, mutate := range bad {
		cfg := DefaultSynthConfig(48000)
		mutate(&cfg)
		if _, _, err := Synthesize(cfg); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestSetSyntheticIRUsesConvolverRate(t *testing.T) {
	c := New(44100)
	cfg := DefaultSynthConfig(96000)
	cfg.DurationS = 0.25
	if err := c.SetSyntheticIR(cfg); err != nil {
		t.Fatalf("SetSyntheticIR: %v", err)
	}
	if want := int(math.Round(0.25 * 44100)); c.IRLen() != want {
		t.Fatalf("IRLen = %d, want %d", c.IRLen(), want)
	}
}
