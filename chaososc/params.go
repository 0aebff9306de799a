package chaososc

import (
	"math"
	"sync/atomic"
)

// Parameter indices as exposed to the host.
const (
	LenRatio = iota
	Scale
	Drive1
	Drive2
	Freq1
	Freq2
	Fine1
	Fine2
	Mod2To1
	Mod1To2

	NumParams
)

var paramKeys = [NumParams]string{
	LenRatio: "len_ratio",
	Scale:    "scale",
	Drive1:   "drive1",
	Drive2:   "drive2",
	Freq1:    "freq1",
	Freq2:    "freq2",
	Fine1:    "fine1",
	Fine2:    "fine2",
	Mod2To1:  "mod2to1",
	Mod1To2:  "mod1to2",
}

var paramDefaults = [NumParams]float32{
	LenRatio: 0.5,
	Scale:    0.5,
	Drive1:   0.0,
	Drive2:   0.0,
	Freq1:    0.5,
	Freq2:    0.5,
	Fine1:    0.5,
	Fine2:    0.5,
	Mod2To1:  0.0,
	Mod1To2:  0.0,
}

// ParamKey returns the snake_case key of a parameter, or "" for an unknown index.
func ParamKey(index int) string {
	if index < 0 || index >= NumParams {
		return ""
	}
	return paramKeys[index]
}

// ParamIndex looks up a parameter by key.
func ParamIndex(key string) (int, bool) {
	for i, k := range paramKeys {
		if k == key {
			return i, true
		}
	}
	return 0, false
}

// DefaultValue returns the construction value of a parameter.
func DefaultValue(index int) float32 {
	if index < 0 || index >= NumParams {
		return 0
	}
	return paramDefaults[index]
}

// Params is the host-visible parameter store. Every cell is an independent
// lock-free atomic; readers may observe a mix of old and new values across
// cells. Values are stored as written, without clamping.
type Params struct {
	cells [NumParams]atomic.Uint32
}

// NewParams returns a store holding the default values.
func NewParams() *Params {
	p := &Params{}
	p.Reset()
	return p
}

// Reset restores every parameter to its default.
func (p *Params) Reset() {
	for i := range p.cells {
		p.cells[i].Store(math.Float32bits(paramDefaults[i]))
	}
}

// Get returns the normalized value of a parameter; unknown indices read as 0.
func (p *Params) Get(index int) float32 {
	if index < 0 || index >= NumParams {
		return 0
	}
	return math.Float32frombits(p.cells[index].Load())
}

// Set stores a normalized value; unknown indices are ignored.
func (p *Params) Set(index int, value float32) {
	if index < 0 || index >= NumParams {
		return
	}
	p.cells[index].Store(math.Float32bits(value))
}

// Snapshot holds one reading of all ten raw parameter values.
type Snapshot struct {
	LenRatio float32
	Scale    float32
	Drive1   float32
	Drive2   float32
	Freq1    float32
	Freq2    float32
	Fine1    float32
	Fine2    float32
	Mod2To1  float32
	Mod1To2  float32
}

// DefaultSnapshot returns the default parameter values.
func DefaultSnapshot() Snapshot {
	var s Snapshot
	for i := 0; i < NumParams; i++ {
		s.Set(i, paramDefaults[i])
	}
	return s
}

// Snapshot loads every cell once.
func (p *Params) Snapshot() Snapshot {
	return Snapshot{
		LenRatio: p.Get(LenRatio),
		Scale:    p.Get(Scale),
		Drive1:   p.Get(Drive1),
		Drive2:   p.Get(Drive2),
		Freq1:    p.Get(Freq1),
		Freq2:    p.Get(Freq2),
		Fine1:    p.Get(Fine1),
		Fine2:    p.Get(Fine2),
		Mod2To1:  p.Get(Mod2To1),
		Mod1To2:  p.Get(Mod1To2),
	}
}

// Store writes every value of s into the store, cell by cell.
func (p *Params) Store(s Snapshot) {
	for i := 0; i < NumParams; i++ {
		p.Set(i, s.Get(i))
	}
}

// Get returns a value by parameter index; unknown indices read as 0.
func (s *Snapshot) Get(index int) float32 {
	switch index {
	case LenRatio:
		return s.LenRatio
	case Scale:
		return s.Scale
	case Drive1:
		return s.Drive1
	case Drive2:
		return s.Drive2
	case Freq1:
		return s.Freq1
	case Freq2:
		return s.Freq2
	case Fine1:
		return s.Fine1
	case Fine2:
		return s.Fine2
	case Mod2To1:
		return s.Mod2To1
	case Mod1To2:
		return s.Mod1To2
	}
	return 0
}

// Set writes a value by parameter index; unknown indices are ignored.
func (s *Snapshot) Set(index int, value float32) {
	switch index {
	case LenRatio:
		s.LenRatio = value
	case Scale:
		s.Scale = value
	case Drive1:
		s.Drive1 = value
	case Drive2:
		s.Drive2 = value
	case Freq1:
		s.Freq1 = value
	case Freq2:
		s.Freq2 = value
	case Fine1:
		s.Fine1 = value
	case Fine2:
		s.Fine2 = value
	case Mod2To1:
		s.Mod2To1 = value
	case Mod1To2:
		s.Mod1To2 = value
	}
}
