package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-chaososc/analysis"
	"github.com/cwbudde/algo-chaososc/internal/fitcommon"
	"github.com/cwbudde/algo-chaososc/preset"
)

type overrides []string

func (o *overrides) String() string { return strings.Join(*o, ",") }

func (o *overrides) Set(v string) error {
	*o = append(*o, v)
	return nil
}

// rateReport is the JSON shape of the sample-rate check.
type rateReport struct {
	Rates     []analysis.Summary `json:"rates"`
	MaxZCRDev float64            `json:"max_zero_crossing_deviation_octaves"`
	MaxCenDev float64            `json:"max_centroid_deviation_octaves"`
	Tolerance float64            `json:"tolerance_octaves"`
	Pass      bool               `json:"pass"`
}

func main() {
	var params overrides
	referencePath := flag.String("reference", "", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render candidate from the preset")
	presetPath := flag.String("preset", "", "Preset JSON path for rendered candidates (optional)")
	flag.Var(&params, "param", "Knob override key=value, repeatable")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	duration := flag.Float64("duration", 4.0, "Rendered candidate duration in seconds")
	rates := flag.String("check-rates", "", "Comma-separated rates; render the preset at each and compare timescale statistics instead")
	tolerance := flag.Float64("tolerance", 0.5, "Allowed deviation in octaves for -check-rates")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	p := preset.Default()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		p = loaded
	}
	for _, o := range params {
		if err := preset.ParseOverride(p, o); err != nil {
			die("invalid -param: %v", err)
		}
	}

	if *rates != "" {
		list, err := fitcommon.ParseRates(*rates)
		if err != nil {
			die("invalid -check-rates: %v", err)
		}
		report, err := checkRates(p, list, *duration, *tolerance)
		if err != nil {
			die("rate check failed: %v", err)
		}
		if *jsonOut {
			printJSON(report)
		} else {
			printRateReport(report)
		}
		if !report.Pass {
			os.Exit(2)
		}
		return
	}

	if *referencePath == "" {
		die("-reference is required unless -check-rates is set")
	}
	ref, err := fitcommon.ReadWAVMonoAt(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = fitcommon.ReadWAVMonoAt(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		left, right, err := fitcommon.RenderStereo(p.Knobs, fitcommon.RenderOptions{
			SampleRate: *sampleRate,
			Frames:     int(float64(*sampleRate) * (*duration)),
			GainDB:     p.OutputGainDB,
			IRWavPath:  p.IRWavPath,
			IRWet:      p.IRWet,
		})
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand = fitcommon.MonoMix(left, right)
		if *writeCandidate != "" {
			if err := fitcommon.WriteStereoWAVLR(*writeCandidate, left, right, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		printJSON(metrics)
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Println()
	fmt.Printf("Envelope RMSE:    %.2f dB\n", metrics.EnvelopeRMSEDB)
	fmt.Printf("Spectral RMSE:    %.2f dB\n", metrics.SpectralRMSEDB)
	fmt.Printf("Zero-cross diff:  %.3f oct\n", metrics.ZeroCrossingDiff)
	fmt.Printf("Centroid diff:    %.3f oct\n", metrics.CentroidDiff)
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)
}

// checkRates renders the same knobs at every rate and measures how far the
// zero-crossing rate and spectral centroid drift from the first rate.
func checkRates(p *preset.Preset, rates []int, duration float64, tolerance float64) (rateReport, error) {
	report := rateReport{Tolerance: tolerance}
	for _, sr := range rates {
		left, right, err := fitcommon.RenderStereo(p.Knobs, fitcommon.RenderOptions{
			SampleRate: sr,
			Frames:     int(float64(sr) * duration),
		})
		if err != nil {
			return report, fmt.Errorf("render at %d Hz: %w", sr, err)
		}
		report.Rates = append(report.Rates, analysis.Summarize(fitcommon.MonoMix(left, right), sr))
	}
	base := report.Rates[0]
	for _, s := range report.Rates[1:] {
		report.MaxZCRDev = max(report.MaxZCRDev, analysis.OctaveDistance(base.ZeroCrossingRate, s.ZeroCrossingRate))
		report.MaxCenDev = max(report.MaxCenDev, analysis.OctaveDistance(base.CentroidHz, s.CentroidHz))
	}
	report.Pass = report.MaxZCRDev <= tolerance && report.MaxCenDev <= tolerance
	return report, nil
}

func printRateReport(r rateReport) {
	fmt.Printf("%-10s %12s %12s %10s\n", "Rate", "ZCR (Hz)", "Centroid", "RMS")
	for _, s := range r.Rates {
		fmt.Printf("%-10d %12.1f %12.1f %10.4f\n", s.SampleRate, s.ZeroCrossingRate, s.CentroidHz, s.RMS)
	}
	fmt.Printf("\nMax ZCR deviation:      %.3f oct\n", r.MaxZCRDev)
	fmt.Printf("Max centroid deviation: %.3f oct\n", r.MaxCenDev)
	verdict := "PASS"
	if !r.Pass {
		verdict = "FAIL"
	}
	fmt.Printf("Tolerance %.2f oct: %s\n", r.Tolerance, verdict)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		die("json encode failed: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
