package room

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

func TestConvolverMatchesDirectConvolution(t *testing.T) {
	c := New(48000)

	input := make([]float32, 1024)
	for i := range input {
		input[i] = float32(math.Sin(float64(i)*0.07)) * 0.8
	}
	leftIR := []float32{1.0, 0.3, -0.2, 0.1, 0.05}
	rightIR := []float32{0.8, -0.1, 0.05}
	if err := c.SetIR(leftIR, rightIR); err != nil {
		t.Fatalf("SetIR: %v", err)
	}

	outL := append([]float32(nil), input...)
	outR := append([]float32(nil), input...)
	// Two calls, both block aligned.
	if err := c.Process(outL[:512], outR[:512]); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := c.Process(outL[512:], outR[512:]); err != nil {
		t.Fatalf("Process: %v", err)
	}

	directL := directConvolve(input, leftIR)[:len(input)]
	directR := directConvolve(input, rightIR)[:len(input)]
	if d := maxAbsDiff(outL, directL); d > 1e-4 {
		t.Fatalf("left channel mismatch too high: max diff=%g", d)
	}
	if d := maxAbsDiff(outR, directR); d > 1e-4 {
		t.Fatalf("right channel mismatch too high: max diff=%g", d)
	}
}

func TestConvolverWetMix(t *testing.T) {
	c := New(48000)
	if err := c.SetIR([]float32{0, 1}, []float32{0, 1}); err != nil {
		t.Fatalf("SetIR: %v", err)
	}
	c.SetWet(0.5)

	left := []float32{1, 0, 0, 0}
	right := []float32{0, 0, 0, 0}
	if err := c.Process(left, right); err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []float32{0.5, 0.5, 0, 0}
	if d := maxAbsDiff(left, want); d > 1e-5 {
		t.Fatalf("wet/dry mix mismatch: got %v want %v", left, want)
	}

	c.SetWet(3)
	if c.Wet() != 1 {
		t.Fatalf("wet not clamped: %g", c.Wet())
	}
	c.SetWet(0)
	c.Reset()
	dry := []float32{0.25, -0.5, 0.75}
	same := append([]float32(nil), dry...)
	if err := c.Process(dry, append([]float32(nil), dry...)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if maxAbsDiff(dry, same) != 0 {
		t.Fatalf("fully dry mix altered the signal: %v", dry)
	}
}

func TestConvolverResetClearsTail(t *testing.T) {
	c := New(48000)
	if err := c.SetIR([]float32{1, 0.5, 0.25}, []float32{1, 0.5, 0.25}); err != nil {
		t.Fatalf("SetIR: %v", err)
	}

	_ = c.Process([]float32{1, 0, 0, 0}, []float32{1, 0, 0, 0})
	c.Reset()
	l := make([]float32, 4)
	r := make([]float32, 4)
	_ = c.Process(l, r)
	if rms := rmsOf(l) + rmsOf(r); rms > 1e-7 {
		t.Fatalf("expected near-silence after reset, got rms=%g", rms)
	}
}

func TestConvolverRejectsMismatchedChannels(t *testing.T) {
	c := New(48000)
	if err := c.Process(make([]float32, 4), make([]float32, 3)); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestConvolverInterleavedMatchesPlanar(t *testing.T) {
	ir := []float32{0.9, 0.2, -0.1}
	a := New(48000)
	b := New(48000)
	_ = a.SetIR(ir, ir)
	_ = b.SetIR(ir, ir)

	left := []float32{1, 0.5, -0.25, 0, 0.1}
	right := []float32{0, 1, 0, -1, 0}
	inter := make([]float32, 0, 10)
	for i := range left {
		inter = append(inter, left[i], right[i])
	}
	if err := a.Process(left, right); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := b.ProcessInterleaved(inter); err != nil {
		t.Fatalf("ProcessInterleaved: %v", err)
	}
	for i := range left {
		if inter[2*i] != left[i] || inter[2*i+1] != right[i] {
			t.Fatalf("frame %d differs", i)
		}
	}
}

func TestConvolverLoads96kWavAndResamples(t *testing.T) {
	left := []float32{1.0, 0.2, 0.1, 0.0}
	right := []float32{0.5, 0.1, 0.05, 0.0}
	path := writeTempIRWav(t, left, right, 96000)

	c := New(48000)
	if err := c.SetIRFromWAV(path); err != nil {
		t.Fatalf("SetIRFromWAV failed: %v", err)
	}

	l := make([]float32, 512)
	r := make([]float32, 512)
	l[0], r[0] = 1, 1
	if err := c.Process(l, r); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if peak(l) < 1e-7 {
		t.Fatalf("unexpectedly weak left response after load/resample: peak=%g", peak(l))
	}
	if peak(r) < 1e-7 {
		t.Fatalf("unexpectedly weak right response after load/resample: peak=%g", peak(r))
	}
}

func TestConvolverLoadsMonoWavAsDualMono(t *testing.T) {
	path := writeTempIRWav(t, []float32{1.0, 0.4, 0.2, 0.1}, nil, 48000)

	c := New(48000)
	if err := c.SetIRFromWAV(path); err != nil {
		t.Fatalf("SetIRFromWAV mono failed: %v", err)
	}
	if c.IRLen() != 4 {
		t.Fatalf("IRLen = %d, want 4", c.IRLen())
	}

	l := []float32{1, 0, 0, 0, 0, 0}
	r := []float32{1, 0, 0, 0, 0, 0}
	_ = c.Process(l, r)
	for i := range l {
		if math.Abs(float64(l[i]-r[i])) > 1e-6 {
			t.Fatalf("expected dual-mono output at frame %d: L=%f R=%f", i, l[i], r[i])
		}
	}
}

func TestConvolverRejectsBadFiles(t *testing.T) {
	c := New(48000)
	if err := c.SetIRFromWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	junk := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(junk, []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.SetIRFromWAV(junk); err == nil {
		t.Fatalf("expected error for invalid wav")
	}
}

func writeTempIRWav(t *testing.T, left []float32, right []float32, sampleRate int) string {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "ir.wav"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	numCh := 1
	data := append([]float32(nil), left...)
	if right != nil {
		numCh = 2
		if len(right) != len(left) {
			t.Fatalf("left/right length mismatch")
		}
		data = make([]float32, len(left)*2)
		for i := range left {
			data[i*2] = left[i]
			data[i*2+1] = right[i]
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, numCh, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: numCh,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("wav write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("wav close: %v", err)
	}
	return f.Name()
}

func directConvolve(x []float32, h []float32) []float32 {
	y := make([]float32, len(x)+len(h)-1)
	for i := 0; i < len(x); i++ {
		for j := 0; j < len(h); j++ {
			y[i+j] += x[i] * h[j]
		}
	}
	return y
}

func maxAbsDiff(a []float32, b []float32) float64 {
	n := min(len(a), len(b))
	m := 0.0
	for i := 0; i < n; i++ {
		m = max(m, math.Abs(float64(a[i]-b[i])))
	}
	return m
}

func rmsOf(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}

func peak(x []float32) float64 {
	m := 0.0
	for _, v := range x {
		m = max(m, math.Abs(float64(v)))
	}
	return m
}
