package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// AverageSpectrum returns the mean Hann-windowed magnitude spectrum of x over
// half-overlapping frames of fftSize samples (fftSize/2+1 bins).
func AverageSpectrum(x []float64, fftSize int) ([]float64, error) {
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two >= 2, got %d", fftSize)
	}
	if len(x) < fftSize {
		return nil, fmt.Errorf("signal too short for fft size %d: %d samples", fftSize, len(x))
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("fft plan: %w", err)
	}

	hann := make([]float64, fftSize)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
	}
	buf := make([]float64, fftSize)
	spec := make([]complex128, fftSize/2+1)
	avg := make([]float64, fftSize/2+1)

	hop := fftSize / 2
	frames := 0
	for pos := 0; pos+fftSize <= len(x); pos += hop {
		for i := 0; i < fftSize; i++ {
			buf[i] = x[pos+i] * hann[i]
		}
		plan.Forward(spec, buf)
		for k := range avg {
			avg[k] += cmplx.Abs(spec[k])
		}
		frames++
	}
	for k := range avg {
		avg[k] /= float64(frames)
	}
	return avg, nil
}

// SpectralCentroid returns the magnitude-weighted mean frequency of x in Hz,
// ignoring the DC bin. Silence has a centroid of 0.
func SpectralCentroid(x []float64, sampleRate int, fftSize int) (float64, error) {
	spec, err := AverageSpectrum(x, fftSize)
	if err != nil {
		return 0, err
	}
	binHz := float64(sampleRate) / float64(fftSize)
	var weighted, total float64
	for k := 1; k < len(spec); k++ {
		weighted += float64(k) * binHz * spec[k]
		total += spec[k]
	}
	if total <= 1e-12 {
		return 0, nil
	}
	return weighted / total, nil
}
