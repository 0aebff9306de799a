package plugin

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-chaososc/chaososc"
)

func TestInfo(t *testing.T) {
	info := New().Info()
	want := Info{
		Name:       "CHAOS_OSC",
		Vendor:     "Flux-Audio",
		UniqueID:   40942320,
		Version:    20,
		Inputs:     0,
		Outputs:    2,
		Parameters: 10,
		Category:   CategoryGenerator,
	}
	if info != want {
		t.Fatalf("Info() = %+v, want %+v", info, want)
	}
}

func TestSetSampleRateRejectsInvalidRates(t *testing.T) {
	p := New()
	for _, rate := range []float32{0, -48000, float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
		if err := p.SetSampleRate(rate); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("SetSampleRate(%g) error = %v, want ErrInvalidSampleRate", rate, err)
		}
	}
	if got := p.Oscillator().SampleRate(); got != 44100 {
		t.Fatalf("rejected rate reached the core: %g", got)
	}
	if err := p.SetSampleRate(96000); err != nil {
		t.Fatalf("SetSampleRate(96000): %v", err)
	}
	if got := p.Oscillator().SampleRate(); got != 96000 {
		t.Fatalf("SampleRate = %g, want 96000", got)
	}
}

func TestParametersAreTotal(t *testing.T) {
	p := New()
	for _, idx := range []int32{-1, 10, 1 << 20} {
		p.SetParameter(idx, 0.7)
		if v := p.GetParameter(idx); v != 0 {
			t.Errorf("GetParameter(%d) = %g, want 0", idx, v)
		}
		if p.ParameterName(idx) != "" || p.ParameterText(idx) != "" || p.ParameterLabel(idx) != "" {
			t.Errorf("expected empty strings for index %d", idx)
		}
	}
	p.SetParameter(chaososc.Mod1To2, 0.25)
	if v := p.GetParameter(chaososc.Mod1To2); v != 0.25 {
		t.Fatalf("GetParameter = %g, want 0.25", v)
	}
	if v := p.Params().Get(chaososc.Mod1To2); v != 0.25 {
		t.Fatalf("store not shared with the adapter: %g", v)
	}
}

func TestParameterNames(t *testing.T) {
	p := New()
	want := []string{"L1 <=> L2", "- <=> +", "O1", "O2", "F1", "F2", "F1.f", "F2.f", "M1", "M2"}
	for i, name := range want {
		if got := p.ParameterName(int32(i)); got != name {
			t.Errorf("ParameterName(%d) = %q, want %q", i, got, name)
		}
	}
}

func TestParameterText(t *testing.T) {
	p := New()
	p.SetParameter(chaososc.LenRatio, 0.25)
	p.SetParameter(chaososc.Drive1, 0.3)
	p.SetParameter(chaososc.Freq2, 0.75)
	p.SetParameter(chaososc.Mod2To1, 0.5)
	p.SetParameter(chaososc.Mod1To2, 0.0125)

	tests := []struct {
		index int32
		want  string
	}{
		{chaososc.LenRatio, "L1: 0.75, L2: 0.25"},
		{chaososc.Scale, "0.50"},
		{chaososc.Drive1, "0.30"},
		{chaososc.Drive2, "0.00"},
		{chaososc.Freq1, "4.00"},
		{chaososc.Freq2, "6.00"},
		{chaososc.Fine1, "0.50"},
		{chaososc.Mod2To1, "100.0"},
		{chaososc.Mod1To2, "2.5"},
	}
	for _, tt := range tests {
		if got := p.ParameterText(tt.index); got != tt.want {
			t.Errorf("ParameterText(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
	if p.ParameterLabel(chaososc.Freq1) != "oct" || p.ParameterLabel(chaososc.Mod2To1) != "%" {
		t.Fatalf("unexpected labels")
	}
}

func TestProcessMatchesCore(t *testing.T) {
	p := New()
	ref := chaososc.NewOscillator()
	want := ref.Render(256)

	left := make([]float32, 256)
	right := make([]float32, 256)
	p.Process([][]float32{left, right})
	for i := range left {
		if left[i] != want[2*i] || right[i] != want[2*i+1] {
			t.Fatalf("frame %d differs from the core", i)
		}
	}
}

func TestProcessOddChannelLayouts(t *testing.T) {
	p := New()

	mono := []float32{1, 1, 1}
	p.Process([][]float32{mono})
	for _, v := range mono {
		if v != 0 {
			t.Fatalf("expected silence for a mono layout, got %v", mono)
		}
	}
	p.Process(nil)

	left := make([]float32, 8)
	right := make([]float32, 4)
	extra := []float32{3, 3}
	for i := range left {
		left[i] = 9
	}
	p.Process([][]float32{left, right, extra})
	for i := 4; i < 8; i++ {
		if left[i] != 0 {
			t.Fatalf("left[%d] = %g, want 0 beyond the shorter channel", i, left[i])
		}
	}
	if extra[0] != 0 || extra[1] != 0 {
		t.Fatalf("extra channel not cleared: %v", extra)
	}
}
