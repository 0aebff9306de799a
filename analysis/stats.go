package analysis

import (
	"math"

	"github.com/cwbudde/algo-chaososc/dsp"
)

// Summary holds timescale statistics of a sustained signal. Rates are per
// second so renders at different sample rates can be compared directly.
type Summary struct {
	SampleRate int `json:"sample_rate"`
	Frames     int `json:"frames"`

	RMS              float64 `json:"rms"`
	Peak             float64 `json:"peak"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate_hz"`
	CentroidHz       float64 `json:"centroid_hz"`

	// Statistics of the rectified signal smoothed by a low-pass at EnvelopeCutoffHz.
	EnvelopeMean float64 `json:"envelope_mean"`
	EnvelopeStd  float64 `json:"envelope_std"`
}

// EnvelopeCutoffHz is the smoothing cutoff of Summary's low-frequency envelope.
const EnvelopeCutoffHz = 20.0

const summaryFFTSize = 4096

// Summarize measures x. Signals shorter than one FFT frame get a zero centroid.
func Summarize(x []float64, sampleRate int) Summary {
	s := Summary{SampleRate: sampleRate, Frames: len(x)}
	if len(x) == 0 || sampleRate <= 0 {
		return s
	}

	s.RMS = rms1(x)
	for _, v := range x {
		if a := math.Abs(v); a > s.Peak {
			s.Peak = a
		}
	}
	s.ZeroCrossingRate = float64(zeroCrossings(x)) / (float64(len(x)) / float64(sampleRate))
	if c, err := SpectralCentroid(x, sampleRate, summaryFFTSize); err == nil {
		s.CentroidHz = c
	}

	env := lowFrequencyEnvelope(x, sampleRate)
	// Skip the filter's settling time.
	settle := sampleRate / 10
	if settle < len(env) {
		env = env[settle:]
	}
	s.EnvelopeMean, s.EnvelopeStd = meanStd(env)
	return s
}

func zeroCrossings(x []float64) int {
	n := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] < 0 && x[i] >= 0) || (x[i-1] >= 0 && x[i] < 0) {
			n++
		}
	}
	return n
}

func lowFrequencyEnvelope(x []float64, sampleRate int) []float64 {
	lp := dsp.NewLowpass(EnvelopeCutoffHz, float32(sampleRate), 0.707)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(lp.Process(float32(math.Abs(v))))
	}
	return out
}

func meanStd(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(x)))
}
