package plugin

import "github.com/cwbudde/algo-chaososc/chaososc"

// Category is the host-facing plugin category.
type Category string

// CategoryGenerator marks a plugin with outputs and no audio inputs.
const CategoryGenerator Category = "Generator"

// Info contains plugin metadata reported to the host.
type Info struct {
	Name       string
	Vendor     string
	UniqueID   int32
	Version    int32
	Inputs     int
	Outputs    int
	Parameters int
	Category   Category
}

// Info returns the identity of the chaos oscillator.
func (p *Plugin) Info() Info {
	return Info{
		Name:       "CHAOS_OSC",
		Vendor:     "Flux-Audio",
		UniqueID:   40942320,
		Version:    20,
		Inputs:     0,
		Outputs:    2,
		Parameters: chaososc.NumParams,
		Category:   CategoryGenerator,
	}
}
