package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-chaososc/chaososc"
)

// ErrOutOfRange is returned for knob values outside [0, 1].
var ErrOutOfRange = errors.New("value out of range")

// File is the JSON schema for chaos oscillator presets.
type File struct {
	Name         string   `json:"name,omitempty"`
	LenRatio     *float32 `json:"len_ratio,omitempty"`
	Scale        *float32 `json:"scale,omitempty"`
	Drive1       *float32 `json:"drive1,omitempty"`
	Drive2       *float32 `json:"drive2,omitempty"`
	Freq1        *float32 `json:"freq1,omitempty"`
	Freq2        *float32 `json:"freq2,omitempty"`
	Fine1        *float32 `json:"fine1,omitempty"`
	Fine2        *float32 `json:"fine2,omitempty"`
	Mod2To1      *float32 `json:"mod2to1,omitempty"`
	Mod1To2      *float32 `json:"mod1to2,omitempty"`
	OutputGainDB *float32 `json:"output_gain_db,omitempty"`
	IRWavPath    string   `json:"ir_wav_path,omitempty"`
	IRWet        *float32 `json:"ir_wet,omitempty"`
}

// Preset is a resolved preset: the ten knobs plus offline render settings.
type Preset struct {
	Name         string
	Knobs        chaososc.Snapshot
	OutputGainDB float32
	IRWavPath    string
	IRWet        float32
}

// Default returns the construction-time knobs with unity gain and no room.
func Default() *Preset {
	return &Preset{
		Knobs: chaososc.DefaultSnapshot(),
		IRWet: 0.25,
	}
}

// knobs lists the file's knob fields in parameter index order.
func (f *File) knobs() [chaososc.NumParams]**float32 {
	return [chaososc.NumParams]**float32{
		chaososc.LenRatio: &f.LenRatio,
		chaososc.Scale:    &f.Scale,
		chaososc.Drive1:   &f.Drive1,
		chaososc.Drive2:   &f.Drive2,
		chaososc.Freq1:    &f.Freq1,
		chaososc.Freq2:    &f.Freq2,
		chaososc.Fine1:    &f.Fine1,
		chaososc.Fine2:    &f.Fine2,
		chaososc.Mod2To1:  &f.Mod2To1,
		chaososc.Mod1To2:  &f.Mod1To2,
	}
}

// LoadJSON loads a preset JSON file and applies it on top of the defaults.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := Default()
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if p.IRWavPath != "" && !filepath.IsAbs(p.IRWavPath) {
		base := filepath.Dir(path)
		p.IRWavPath = filepath.Clean(filepath.Join(base, p.IRWavPath))
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing preset. Nothing is
// written to dst when any field is invalid.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination preset")
	}
	if f == nil {
		return nil
	}

	next := *dst
	for i, field := range f.knobs() {
		if *field == nil {
			continue
		}
		if err := SetKnob(&next, chaososc.ParamKey(i), **field); err != nil {
			return err
		}
	}
	if f.Name != "" {
		next.Name = f.Name
	}
	if f.OutputGainDB != nil {
		g := float64(*f.OutputGainDB)
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return fmt.Errorf("output_gain_db must be finite")
		}
		next.OutputGainDB = *f.OutputGainDB
	}
	if f.IRWavPath != "" {
		next.IRWavPath = strings.TrimSpace(f.IRWavPath)
	}
	if f.IRWet != nil {
		if err := checkUnit("ir_wet", *f.IRWet); err != nil {
			return err
		}
		next.IRWet = *f.IRWet
	}
	*dst = next
	return nil
}

// SetKnob validates and stores one knob by key.
func SetKnob(dst *Preset, key string, value float32) error {
	idx, ok := chaososc.ParamIndex(key)
	if !ok {
		return fmt.Errorf("unknown parameter %q", key)
	}
	if err := checkUnit(key, value); err != nil {
		return err
	}
	dst.Knobs.Set(idx, value)
	return nil
}

// ParseOverride parses a "key=value" command-line override and applies it.
func ParseOverride(dst *Preset, s string) error {
	key, raw, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("invalid override %q (expected key=value)", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 32)
	if err != nil {
		return fmt.Errorf("invalid value in override %q: %w", s, err)
	}
	return SetKnob(dst, strings.TrimSpace(key), float32(v))
}

// ToFile converts a resolved preset back to its JSON schema, with every knob set.
func ToFile(p *Preset) *File {
	f := &File{
		Name:      p.Name,
		IRWavPath: p.IRWavPath,
	}
	for i, field := range f.knobs() {
		v := p.Knobs.Get(i)
		*field = &v
	}
	gain := p.OutputGainDB
	f.OutputGainDB = &gain
	wet := p.IRWet
	f.IRWet = &wet
	return f
}

// SaveJSON writes a preset as indented JSON.
func SaveJSON(path string, p *Preset) error {
	b, err := json.MarshalIndent(ToFile(p), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

func checkUnit(key string, v float32) error {
	if math.IsNaN(float64(v)) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s=%g (expected 0..1)", ErrOutOfRange, key, v)
	}
	return nil
}
