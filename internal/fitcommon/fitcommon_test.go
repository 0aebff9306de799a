package fitcommon

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-chaososc/chaososc"
)

func TestRenderStereoMatchesOscillator(t *testing.T) {
	knobs := chaososc.DefaultSnapshot()
	knobs.Mod1To2 = 0.3

	left, right, err := RenderStereo(knobs, RenderOptions{SampleRate: 48000, Frames: 1000})
	if err != nil {
		t.Fatalf("RenderStereo: %v", err)
	}

	osc := chaososc.NewOscillator()
	osc.SetSampleRate(48000)
	osc.Params().Store(knobs)
	want := osc.Render(1000)
	for i := range left {
		if left[i] != want[2*i] || right[i] != want[2*i+1] {
			t.Fatalf("frame %d differs from a direct render", i)
		}
	}
}

func TestRenderStereoAppliesGain(t *testing.T) {
	knobs := chaososc.DefaultSnapshot()
	ref, _, err := RenderStereo(knobs, RenderOptions{SampleRate: 44100, Frames: 512})
	if err != nil {
		t.Fatal(err)
	}
	quiet, _, err := RenderStereo(knobs, RenderOptions{SampleRate: 44100, Frames: 512, GainDB: -20})
	if err != nil {
		t.Fatal(err)
	}
	for i := range ref {
		if math.Abs(float64(quiet[i])-0.1*float64(ref[i])) > 5e-3 {
			t.Fatalf("frame %d: %g is not -20 dB of %g", i, quiet[i], ref[i])
		}
	}
}

func TestRenderStereoSyntheticRoomAddsTail(t *testing.T) {
	knobs := chaososc.DefaultSnapshot()
	dry, _, err := RenderStereo(knobs, RenderOptions{SampleRate: 44100, Frames: 4096})
	if err != nil {
		t.Fatal(err)
	}
	wet, _, err := RenderStereo(knobs, RenderOptions{SampleRate: 44100, Frames: 4096, IRWet: 1, RoomDecayS: 0.3})
	if err != nil {
		t.Fatalf("RenderStereo: %v", err)
	}
	same := true
	for i := range dry {
		if dry[i] != wet[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("synthetic room left the signal unchanged")
	}
}

func TestRenderStereoRejectsBadOptions(t *testing.T) {
	if _, _, err := RenderStereo(chaososc.DefaultSnapshot(), RenderOptions{SampleRate: 0, Frames: 10}); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
	_, _, err := RenderStereo(chaososc.DefaultSnapshot(), RenderOptions{
		SampleRate: 44100,
		Frames:     10,
		IRWavPath:  filepath.Join(t.TempDir(), "missing.wav"),
	})
	if err == nil {
		t.Fatalf("expected error for missing IR")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	left := []float32{0, 0.5, -0.5, 0.25}
	right := []float32{0.1, -0.1, 0.9, -0.9}
	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	if err := WriteStereoWAVLR(path, left, right, 22050); err != nil {
		t.Fatalf("WriteStereoWAVLR: %v", err)
	}
	mono, rate, err := ReadWAVMono(path)
	if err != nil {
		t.Fatalf("ReadWAVMono: %v", err)
	}
	if rate != 22050 || len(mono) != len(left) {
		t.Fatalf("got rate=%d frames=%d", rate, len(mono))
	}
	want := MonoMix(left, right)
	for i := range mono {
		if math.Abs(mono[i]-want[i]) > 1e-3 {
			t.Fatalf("frame %d: got %g want %g", i, mono[i], want[i])
		}
	}
	if err := WriteStereoWAVLR(path, left, right[:2], 22050); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestDBToGain(t *testing.T) {
	if DBToGain(0) != 1 {
		t.Fatalf("0 dB must be unity")
	}
	for _, db := range []float32{-40, -6, 6} {
		want := math.Pow(10, float64(db)/20)
		if got := float64(DBToGain(db)); math.Abs(got-want)/want > 0.05 {
			t.Errorf("DBToGain(%g) = %g, want %g", db, got, want)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if n, err := ParseWorkers("auto"); err != nil || n != 0 {
		t.Fatalf("ParseWorkers(auto) = %d, %v", n, err)
	}
	if n, err := ParseWorkers(" 4 "); err != nil || n != 4 {
		t.Fatalf("ParseWorkers(4) = %d, %v", n, err)
	}
	if _, err := ParseWorkers("0"); err == nil {
		t.Fatalf("expected error for zero workers")
	}
	rates, err := ParseRates("44100, 96000")
	if err != nil || len(rates) != 2 || rates[1] != 96000 {
		t.Fatalf("ParseRates = %v, %v", rates, err)
	}
	if _, err := ParseRates("44100,-1"); err == nil {
		t.Fatalf("expected error for negative rate")
	}
}
