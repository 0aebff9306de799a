// Package plugin adapts the chaos oscillator to the shape a plugin host
// expects: metadata, indexed parameters with display text, and per-channel
// output buffers.
package plugin

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-chaososc/chaososc"
)

// ErrInvalidSampleRate is returned for rates that are not finite and positive.
var ErrInvalidSampleRate = errors.New("invalid sample rate")

// Plugin is a host-facing wrapper around one oscillator.
type Plugin struct {
	osc    *chaososc.Oscillator
	params *chaososc.Params
}

// New creates a plugin at the default 44.1 kHz rate and default parameters.
func New() *Plugin {
	params := chaososc.NewParams()
	return &Plugin{
		osc:    chaososc.NewOscillatorWithParams(params),
		params: params,
	}
}

// Oscillator exposes the wrapped core for offline tools.
func (p *Plugin) Oscillator() *chaososc.Oscillator {
	return p.osc
}

// Params returns the store hosts and controllers write to.
func (p *Plugin) Params() *chaososc.Params {
	return p.params
}

// SetSampleRate forwards a validated rate to the core.
func (p *Plugin) SetSampleRate(rate float32) error {
	r := float64(rate)
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRate, rate)
	}
	p.osc.SetSampleRate(rate)
	return nil
}

// Process renders into the first two output channels. Hosts offering fewer
// than two channels get silence; extra channels are zeroed.
func (p *Plugin) Process(outputs [][]float32) {
	if len(outputs) < 2 {
		for _, ch := range outputs {
			clear(ch)
		}
		return
	}
	left, right := outputs[0], outputs[1]
	frames := min(len(left), len(right))
	p.osc.Process(left, right, frames)
	clear(left[frames:])
	clear(right[frames:])
	for _, ch := range outputs[2:] {
		clear(ch)
	}
}

// GetParameter returns the raw value at index, or 0 for an unknown index.
func (p *Plugin) GetParameter(index int32) float32 {
	return p.params.Get(int(index))
}

// SetParameter stores a raw value; unknown indices are ignored.
func (p *Plugin) SetParameter(index int32, value float32) {
	p.params.Set(int(index), value)
}
