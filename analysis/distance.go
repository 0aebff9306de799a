package analysis

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// Metrics contains distance and similarity measurements between two renders.
// Chaotic signals decorrelate quickly, so every measure is time-shift
// invariant: envelopes, average spectra and per-second rates.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`

	EnvelopeRMSEDB   float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB   float64 `json:"spectral_rmse_db"`
	ZeroCrossingDiff float64 `json:"zero_crossing_diff_octaves"`
	CentroidDiff     float64 `json:"centroid_diff_octaves"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

const compareFFTSize = 2048

// Compare returns objective distance metrics and a combined score in [0,1].
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}

	ref := trimLeadingSilence(reference, 1e-6)
	cand := trimLeadingSilence(candidate, 1e-6)
	n := min(len(ref), len(cand))
	if n < compareFFTSize {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}
	// Twelve seconds is plenty for stationary statistics.
	n = min(n, sampleRate*12)
	ref = normalizeRMS(ref[:n], 0.1)
	cand = normalizeRMS(cand[:n], 0.1)
	m.AlignedFrames = n

	refEnv := rmsEnvelope(ref, 256, 128)
	candEnv := rmsEnvelope(cand, 256, 128)
	if envN := min(len(refEnv), len(candEnv)); envN > 0 {
		var sum float64
		for i := range envN {
			d := linToDB(refEnv[i]) - linToDB(candEnv[i])
			sum += d * d
		}
		m.EnvelopeRMSEDB = math.Sqrt(sum / float64(envN))
	}

	m.SpectralRMSEDB = spectralRMSEDB(ref, cand)

	m.ZeroCrossingDiff = OctaveDistance(float64(zeroCrossings(ref)), float64(zeroCrossings(cand)))

	refC, errR := SpectralCentroid(ref, sampleRate, compareFFTSize)
	candC, errC := SpectralCentroid(cand, sampleRate, compareFFTSize)
	if errR == nil && errC == nil {
		m.CentroidDiff = OctaveDistance(refC, candC)
	}

	// 30 dB or two octaves counts as fully different.
	m.Score = clamp01(0.20*clamp01(m.EnvelopeRMSEDB/30.0) +
		0.40*clamp01(m.SpectralRMSEDB/30.0) +
		0.20*clamp01(m.ZeroCrossingDiff/2.0) +
		0.20*clamp01(m.CentroidDiff/2.0))
	m.Similarity = clamp01(float64(approx.FastExp(float32(-4.0 * m.Score))))

	return m
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i, v := range x {
		if math.Abs(v) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	out := make([]float64, len(x))
	g := 1.0
	if r := rms1(x); r > 1e-12 {
		g = target / r
	}
	for i, v := range x {
		out[i] = v * g
	}
	return out
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	out := make([]float64, 0, 1+(len(x)-frame)/hop)
	for start := 0; start+frame <= len(x); start += hop {
		out = append(out, rms1(x[start:start+frame]))
	}
	return out
}

func spectralRMSEDB(a []float64, b []float64) float64 {
	sa, errA := AverageSpectrum(a, compareFFTSize)
	sb, errB := AverageSpectrum(b, compareFFTSize)
	if errA != nil || errB != nil {
		return 0
	}
	var sum float64
	for k := 1; k < len(sa); k++ {
		d := linToDB(sa[k]) - linToDB(sb[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(sa)-1))
}

// MaxOctaveDistance is reported when exactly one of two rates is zero.
const MaxOctaveDistance = 16.0

// OctaveDistance is |log2(a/b)|, capped at MaxOctaveDistance.
func OctaveDistance(a, b float64) float64 {
	if a <= 0 && b <= 0 {
		return 0
	}
	if a <= 0 || b <= 0 {
		return MaxOctaveDistance
	}
	return min(math.Abs(math.Log2(a/b)), MaxOctaveDistance)
}

func linToDB(x float64) float64 {
	return 20.0 * math.Log10(max(x, 1e-12))
}

func clamp01(x float64) float64 {
	return max(0, min(1, x))
}
