package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cwbudde/algo-chaososc/internal/fitcommon"
	"github.com/cwbudde/algo-chaososc/preset"
)

// overrides collects repeated -param key=value flags.
type overrides []string

func (o *overrides) String() string {
	return strings.Join(*o, ",")
}

func (o *overrides) Set(v string) error {
	*o = append(*o, v)
	return nil
}

func main() {
	var params overrides
	duration := flag.Float64("duration", 4.0, "Duration in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	flag.Var(&params, "param", "Knob override key=value, repeatable (e.g. -param scale=0.3)")
	irPath := flag.String("ir", "", "IR WAV path override (optional)")
	irWet := flag.Float64("ir-wet", -1, "IR wet share 0..1 (default: from preset)")
	gainDB := flag.Float64("gain-db", math.NaN(), "Output gain in dB (default: from preset)")
	roomDecay := flag.Float64("room-decay", 0, "Synthetic room decay in seconds when no IR is set, 0 disables")
	highpassHz := flag.Float64("highpass-hz", 0, "DC-blocking highpass cutoff in Hz, 0 disables")
	output := flag.String("output", "output.wav", "Output WAV file path")
	savePreset := flag.String("save-preset", "", "Also write the resolved preset to this JSON path")
	flag.Parse()

	p := preset.Default()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("Error loading preset %q: %v", *presetPath, err)
		}
		p = loaded
	}
	for _, o := range params {
		if err := preset.ParseOverride(p, o); err != nil {
			die("Error in -param: %v", err)
		}
	}
	if *irPath != "" {
		p.IRWavPath = *irPath
	}
	if *irWet >= 0 {
		if *irWet > 1 {
			die("-ir-wet must be in [0,1], got %g", *irWet)
		}
		p.IRWet = float32(*irWet)
	}
	if !math.IsNaN(*gainDB) {
		p.OutputGainDB = float32(*gainDB)
	}
	if *sampleRate <= 0 {
		die("-sample-rate must be > 0")
	}

	frames := max(int(float64(*sampleRate)*(*duration)), 1)
	irLabel := p.IRWavPath
	if irLabel == "" {
		irLabel = "none"
		if *roomDecay > 0 {
			irLabel = fmt.Sprintf("synthetic %.2fs", *roomDecay)
		}
	}
	fmt.Printf("Rendering %.2f seconds at %d Hz (preset: %s, IR: %s)...\n", *duration, *sampleRate, presetLabel(*presetPath), irLabel)

	left, right, err := fitcommon.RenderStereo(p.Knobs, fitcommon.RenderOptions{
		SampleRate: *sampleRate,
		Frames:     frames,
		GainDB:     p.OutputGainDB,
		HighpassHz: *highpassHz,
		IRWavPath:  p.IRWavPath,
		IRWet:      p.IRWet,
		RoomDecayS: *roomDecay,
	})
	if err != nil {
		die("Error rendering: %v", err)
	}

	if err := fitcommon.WriteStereoWAVLR(*output, left, right, *sampleRate); err != nil {
		die("Error writing WAV file: %v", err)
	}
	if *savePreset != "" {
		if err := preset.SaveJSON(*savePreset, p); err != nil {
			die("Error saving preset: %v", err)
		}
	}

	peak := fitcommon.Peak(left, right)
	if peak > 1 {
		fmt.Printf("Warning: peak %.3f exceeds full scale; lower -gain-db\n", peak)
	}
	fmt.Printf("Successfully wrote %s (%d frames, peak %.3f)\n", *output, frames, peak)
}

func presetLabel(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
