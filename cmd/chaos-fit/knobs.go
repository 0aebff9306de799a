package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-chaososc/chaososc"
	"github.com/cwbudde/algo-chaososc/internal/fitcommon"
	"github.com/cwbudde/algo-chaososc/preset"
)

// knobDef is one fitted parameter and its search range.
type knobDef struct {
	Name  string
	Index int
	Min   float64
	Max   float64
}

type candidate struct {
	Vals []float64
}

// parseFitKeys resolves the -fit flag to knob definitions over [0,1].
func parseFitKeys(raw string) ([]knobDef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		defs := make([]knobDef, 0, chaososc.NumParams)
		for i := 0; i < chaososc.NumParams; i++ {
			defs = append(defs, knobDef{Name: chaososc.ParamKey(i), Index: i, Min: 0, Max: 1})
		}
		return defs, nil
	}

	seen := map[int]bool{}
	var defs []knobDef
	for _, part := range strings.Split(raw, ",") {
		key := strings.TrimSpace(part)
		if key == "" {
			continue
		}
		idx, ok := chaososc.ParamIndex(key)
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", key)
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		defs = append(defs, knobDef{Name: key, Index: idx, Min: 0, Max: 1})
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no parameters to fit in %q", raw)
	}
	return defs, nil
}

// initCandidate reads the starting point of every fitted knob from base.
func initCandidate(base *preset.Preset, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		vals[i] = fitcommon.Clamp(float64(base.Knobs.Get(d.Index)), d.Min, d.Max)
	}
	return candidate{Vals: vals}
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = fitcommon.Clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Vals: vals}
}

// applyCandidate returns a copy of base with the candidate's knobs set.
func applyCandidate(base *preset.Preset, defs []knobDef, c candidate) *preset.Preset {
	p := *base
	for i, d := range defs {
		if i < len(c.Vals) {
			p.Knobs.Set(d.Index, float32(fitcommon.Clamp(c.Vals[i], d.Min, d.Max)))
		}
	}
	return &p
}

func cloneCandidate(c candidate) candidate {
	vals := make([]float64, len(c.Vals))
	copy(vals, c.Vals)
	return candidate{Vals: vals}
}

func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}
	var rep runReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := make([]float64, len(fallback.Vals))
	copy(vals, fallback.Vals)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = fitcommon.Clamp(v, d.Min, d.Max)
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}
