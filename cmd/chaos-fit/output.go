package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-chaososc/analysis"
	"github.com/cwbudde/algo-chaososc/internal/fitcommon"
	"github.com/cwbudde/algo-chaososc/preset"
)

type runReport struct {
	ReferencePath   string             `json:"reference_path"`
	PresetPath      string             `json:"preset_path"`
	OutputPreset    string             `json:"output_preset"`
	SampleRate      int                `json:"sample_rate"`
	Frames          int                `json:"frames"`
	DurationSec     float64            `json:"elapsed_seconds"`
	Evaluations     int                `json:"evaluations"`
	MayflyVariant   string             `json:"mayfly_variant"`
	BestScore       float64            `json:"best_score"`
	BestSimilarity  float64            `json:"best_similarity"`
	BestMetrics     analysis.Metrics   `json:"best_metrics"`
	BestKnobs       map[string]float64 `json:"best_knobs"`
	CheckpointCount int                `json:"checkpoint_count"`
}

func reportPathFor(cfg *optimizationConfig) string {
	if cfg.reportPath != "" {
		return cfg.reportPath
	}
	return cfg.outputPreset + ".report.json"
}

func writeOutputs(cfg *optimizationConfig, elapsed float64, evals int, best candidate, bestM analysis.Metrics, checkpoints int) error {
	p := applyCandidate(cfg.base, cfg.defs, best)
	p.IRWavPath = presetIRPath(cfg.outputPreset, p.IRWavPath)
	if err := os.MkdirAll(filepath.Dir(cfg.outputPreset), 0o755); err != nil {
		return err
	}
	if err := preset.SaveJSON(cfg.outputPreset, p); err != nil {
		return err
	}

	knobs := make(map[string]float64, len(cfg.defs))
	for i, d := range cfg.defs {
		knobs[d.Name] = best.Vals[i]
	}
	rep := runReport{
		ReferencePath:   cfg.referencePath,
		PresetPath:      cfg.presetPath,
		OutputPreset:    cfg.outputPreset,
		SampleRate:      cfg.sampleRate,
		Frames:          cfg.frames,
		DurationSec:     elapsed,
		Evaluations:     evals,
		MayflyVariant:   cfg.mayflyVariant,
		BestScore:       bestM.Score,
		BestSimilarity:  bestM.Similarity,
		BestMetrics:     bestM,
		BestKnobs:       knobs,
		CheckpointCount: checkpoints,
	}
	return writeJSON(reportPathFor(cfg), rep)
}

func writeBestCandidateSnapshot(cfg *optimizationConfig, best candidate) error {
	left, right, err := renderCandidate(cfg, best)
	if err != nil {
		return err
	}
	return fitcommon.WriteStereoWAVLR(cfg.writeBestCandidate, left, right, cfg.sampleRate)
}

// presetIRPath rewrites irPath relative to the directory of presetPath so the
// written preset resolves it the way LoadJSON does.
func presetIRPath(presetPath string, irPath string) string {
	if irPath == "" {
		return ""
	}

	presetDirAbs, err := filepath.Abs(filepath.Dir(presetPath))
	if err != nil {
		return irPath
	}
	irAbs, err := filepath.Abs(irPath)
	if err != nil {
		return irPath
	}
	rel, err := filepath.Rel(presetDirAbs, irAbs)
	if err != nil {
		return irPath
	}
	return filepath.ToSlash(rel)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
