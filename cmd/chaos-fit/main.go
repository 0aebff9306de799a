package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-chaososc/internal/fitcommon"
	"github.com/cwbudde/algo-chaososc/preset"
)

func main() {
	referencePath := flag.String("reference", "reference/target.wav", "Reference WAV path")
	presetPath := flag.String("preset", "", "Base preset JSON path (optional)")
	outputPreset := flag.String("output-preset", "presets/fitted.json", "Path to write best fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	fitKeys := flag.String("fit", "all", "Comma-separated parameter keys to fit, or 'all'")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	duration := flag.Float64("duration", 3.0, "Candidate render duration in seconds")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 120.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 4000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	checkpointEvery := flag.Int("checkpoint-every", 1, "Write checkpoint every N best-score improvements")
	writeBestCandidate := flag.String("write-best-candidate", "", "Optional WAV path to write best candidate render")
	resume := flag.Bool("resume", true, "Resume from previous best_knobs report when available")
	workersRaw := flag.String("workers", "auto", "Parallel Mayfly rounds: integer >= 1 or 'auto'")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *sampleRate <= 0 || *duration <= 0 {
		die("sample-rate and duration must be > 0")
	}
	workers, err := fitcommon.ParseWorkers(*workersRaw)
	if err != nil {
		die("invalid -workers: %v", err)
	}
	*reportEvery = max(*reportEvery, 1)
	*checkpointEvery = max(*checkpointEvery, 1)
	*mayflyPop = max(*mayflyPop, 2)
	*mayflyRoundEvals = max(*mayflyRoundEvals, *mayflyPop*2)

	base := preset.Default()
	if *presetPath != "" {
		base, err = preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
	}

	ref, err := fitcommon.ReadWAVMonoAt(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	defs, err := parseFitKeys(*fitKeys)
	if err != nil {
		die("invalid -fit: %v", err)
	}

	cfg := &optimizationConfig{
		reference:          ref,
		base:               base,
		defs:               defs,
		initCandidate:      initCandidate(base, defs),
		sampleRate:         *sampleRate,
		frames:             int(float64(*sampleRate) * (*duration)),
		seed:               *seed,
		timeBudget:         *timeBudget,
		maxEvals:           *maxEvals,
		reportEvery:        *reportEvery,
		checkpointEvery:    *checkpointEvery,
		mayflyVariant:      strings.ToLower(*mayflyVariant),
		mayflyPop:          *mayflyPop,
		mayflyRoundEvals:   *mayflyRoundEvals,
		workers:            workers,
		outputPreset:       *outputPreset,
		reportPath:         *reportPath,
		referencePath:      *referencePath,
		presetPath:         *presetPath,
		writeBestCandidate: *writeBestCandidate,
	}
	if _, err := newMayflyConfig(cfg.mayflyVariant, cfg.mayflyPop, len(defs), 1); err != nil {
		die("invalid mayfly variant: %v", err)
	}

	if *resume {
		resumePath := reportPathFor(cfg)
		if resumed, ok, err := loadCandidateFromReport(resumePath, defs, cfg.initCandidate); err != nil {
			fmt.Fprintf(os.Stderr, "resume skipped (%s): %v\n", resumePath, err)
		} else if ok {
			cfg.initCandidate = resumed
			fmt.Printf("Resumed candidate from %s\n", resumePath)
		}
	}

	fmt.Printf("Fitting %d knobs against %s (%d frames at %d Hz, %s)\n", len(defs), *referencePath, cfg.frames, cfg.sampleRate, cfg.mayflyVariant)
	res, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	if err := writeOutputs(cfg, res.elapsed, res.evals, res.best, res.bestMetrics, res.checkpoints); err != nil {
		die("failed to write outputs: %v", err)
	}
	if cfg.writeBestCandidate != "" {
		if err := writeBestCandidateSnapshot(cfg, res.best); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write best candidate wav: %v\n", err)
		}
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n",
		res.evals, res.elapsed, res.bestMetrics.Score, res.bestMetrics.Similarity*100.0, cfg.mayflyVariant)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
